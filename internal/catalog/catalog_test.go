package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestDefault_LoadsEmbeddedBeers(t *testing.T) {
	c := defaultCatalog(t)

	all := c.All()
	require.Len(t, all, 5)
	assert.Equal(t, Entry{ID: 133, Name: "Sambrooks Battersea IPA"}, all[0])
	assert.Equal(t, Entry{ID: 179, Name: "Yenda IPA"}, all[4])
	assert.Equal(t, 5, c.Len())
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := defaultCatalog(t)

	all := c.All()
	all[0].Name = "mutated"

	assert.Equal(t, "Sambrooks Battersea IPA", c.All()[0].Name)
}

func TestFindByName(t *testing.T) {
	c := defaultCatalog(t)

	tests := []struct {
		name  string
		query string
		want  Entry
		found bool
	}{
		{"exact", "Yenda Pale Ale", Entry{ID: 177, Name: "Yenda Pale Ale"}, true},
		{"lower case", "yenda pale ale", Entry{ID: 177, Name: "Yenda Pale Ale"}, true},
		{"upper case", "YENDA IPA", Entry{ID: 179, Name: "Yenda IPA"}, true},
		{"not in catalog", "Tiger", Entry{}, false},
		{"prefix only", "Yenda", Entry{}, false},
		{"empty", "", Entry{}, false},
		{"trailing space", "Yenda IPA ", Entry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.FindByName(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindByID(t *testing.T) {
	c := defaultCatalog(t)

	got, ok := c.FindByID(176)
	require.True(t, ok)
	assert.Equal(t, "Yenda Crisp Lager", got.Name)

	_, ok = c.FindByID(1)
	assert.False(t, ok)
}

func TestFindByIDs_PreservesOrderAndDropsUnknown(t *testing.T) {
	c := defaultCatalog(t)

	got := c.FindByIDs([]int{179, 999, 133, 179})

	assert.Equal(t, []Entry{
		{ID: 179, Name: "Yenda IPA"},
		{ID: 133, Name: "Sambrooks Battersea IPA"},
		{ID: 179, Name: "Yenda IPA"},
	}, got)
	assert.Empty(t, c.FindByIDs(nil))
}

func TestLoad_RejectsInvalidSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `beers: [`},
		{"missing list", `other: 1`},
		{"negative id", `
#Beer: {id: int & >0, name: string & !=""}
beers: [...#Beer] & [{id: -1, name: "Bad"}]
`},
		{"empty name", `
#Beer: {id: int & >0, name: string & !=""}
beers: [...#Beer] & [{id: 1, name: ""}]
`},
		{"duplicate id", `beers: [{id: 1, name: "A"}, {id: 1, name: "B"}]`},
		{"duplicate folded name", `beers: [{id: 1, name: "Ale"}, {id: 2, name: "ALE"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_CustomCatalog(t *testing.T) {
	c, err := Load([]byte(`beers: [{id: 7, name: "House Stout"}]`))
	require.NoError(t, err)

	got, ok := c.FindByName("house stout")
	require.True(t, ok)
	assert.Equal(t, 7, got.ID)
}
