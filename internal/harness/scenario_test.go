package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/happy_path.yaml")
	require.NoError(t, err)

	assert.Equal(t, "happy_path", s.Name)
	assert.Equal(t, []int{4821}, s.Codes)
	require.Len(t, s.Turns, 4)

	first := s.Turns[0]
	assert.Equal(t, "OrderCraftBeer", first.Intent)
	require.Contains(t, first.Slots, "CraftBeer")
	assert.Nil(t, first.Slots["CraftBeer"])
	require.NotNil(t, first.Expect)
	assert.Equal(t, map[string]string{"beers": "[]"}, first.Expect.Attributes)

	last := s.Turns[3]
	require.NotNil(t, last.Slots["OTP"])
	assert.Equal(t, "4821", *last.Slots["OTP"])
	assert.NotNil(t, last.Expect.Attributes)
	assert.Empty(t, last.Expect.Attributes)
	require.NotNil(t, last.Expect.CheckoutCalls)
	assert.Equal(t, 3, *last.Expect.CheckoutCalls)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\ndescription: b\nturns:\n  - intent: OrderCraftBeer\n"), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Name)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: a\ndescription: b\nturn:\n  - intent: X\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: b\nturns:\n  - intent: X\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: a\nturns:\n  - intent: X\n",
			wantErr: "description is required",
		},
		{
			name:    "no turns",
			yaml:    "name: a\ndescription: b\n",
			wantErr: "turns list is required",
		},
		{
			name:    "missing intent",
			yaml:    "name: a\ndescription: b\nturns:\n  - source: DialogCodeHook\n",
			wantErr: "turns[0]: intent is required",
		},
		{
			name:    "bad source",
			yaml:    "name: a\ndescription: b\nturns:\n  - intent: X\n    source: Webhook\n",
			wantErr: "unknown source",
		},
		{
			name:    "bad confirmation",
			yaml:    "name: a\ndescription: b\nturns:\n  - intent: X\n    confirmation: Maybe\n",
			wantErr: "unknown confirmation",
		},
		{
			name:    "bad action",
			yaml:    "name: a\ndescription: b\nturns:\n  - intent: X\n    expect:\n      action: Dance\n",
			wantErr: "unknown action",
		},
		{
			name:    "negative checkout calls",
			yaml:    "name: a\ndescription: b\nturns:\n  - intent: X\n    expect:\n      checkout_calls: -1\n",
			wantErr: "checkout_calls must be non-negative",
		},
		{
			name:    "bad channel",
			yaml:    "name: a\ndescription: b\nchannel: fax\nturns:\n  - intent: X\n",
			wantErr: "channel",
		},
		{
			name:    "bad checkout step",
			yaml:    "name: a\ndescription: b\ncheckout_fails: PAYMENT\nturns:\n  - intent: X\n",
			wantErr: "checkout_fails",
		},
		{
			name:    "bad code",
			yaml:    "name: a\ndescription: b\ncodes: [42]\nturns:\n  - intent: X\n",
			wantErr: "not a 4 digit code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
