// Package catalog holds the static craft beer catalog.
//
// The catalog is compiled from an embedded CUE document at load time. The CUE
// schema rejects non-positive ids and empty names, so a loaded Catalog is
// always well formed. Lookups are pure; a miss is reported with ok=false and is
// never an error.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

//go:embed beers.cue
var beersCUE []byte

// ErrInvalid is returned when catalog source fails validation.
var ErrInvalid = errors.New("invalid catalog")

// Entry is a single catalog record.
type Entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Catalog is an immutable, ordered list of entries.
type Catalog struct {
	entries []Entry
	byID    map[int]int    // id -> index
	byName  map[string]int // folded name -> index
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(beersCUE)
})

// Default returns the catalog compiled from the embedded beers.cue.
// The result is computed once per process.
func Default() (*Catalog, error) {
	return loadDefault()
}

// Load compiles CUE source and builds a catalog from its top-level "beers" list.
func Load(src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("beers.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%w: compile: %v", ErrInvalid, err)
	}

	list := v.LookupPath(cue.ParsePath("beers"))
	if !list.Exists() {
		return nil, fmt.Errorf("%w: no beers list", ErrInvalid)
	}
	if err := list.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var entries []Entry
	if err := list.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	return New(entries)
}

// New builds a catalog from entries, preserving their order.
// Duplicate ids or names (after case folding) are rejected.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byID:    make(map[int]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)

	for i, e := range c.entries {
		if e.ID <= 0 || e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d: id and name are required", ErrInvalid, i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalid, e.ID)
		}
		key := fold(e.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalid, e.Name)
		}
		c.byID[e.ID] = i
		c.byName[key] = i
	}
	return c, nil
}

// FindByName returns the entry whose name matches exactly, ignoring case.
func (c *Catalog) FindByName(name string) (Entry, bool) {
	i, ok := c.byName[fold(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// FindByID returns the entry with the given id.
func (c *Catalog) FindByID(id int) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// FindByIDs maps ids to entries in input order. Unknown ids are dropped.
func (c *Catalog) FindByIDs(ids []int) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := c.FindByID(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every entry in declaration order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// fold normalises a name for comparison. A Caser is stateful, so one is
// created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
