package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftbeerbot/internal/store"
)

// seedSession records a three-turn conversation for session id.
func seedSession(t *testing.T, dbPath, id string) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	beers := `[{"id":179,"name":"Yenda IPA"}]`
	turns := []store.Turn{
		{
			ID: id + "-1", Intent: "OrderCraftBeer", Source: "DialogCodeHook",
			Transition: "start_order", Action: "Delegate",
			Before: map[string]string{}, After: map[string]string{"beers": "[]"},
		},
		{
			ID: id + "-2", Intent: "AddCraftBeer", Source: "DialogCodeHook",
			Transition: "add_beer", Action: "ConfirmIntent",
			Message: "Ok, so that's 1 case of Yenda IPA. Should I place the order now?",
			Before:  map[string]string{"beers": "[]"}, After: map[string]string{"beers": beers},
		},
		{
			ID: id + "-3", Intent: "OrderCraftBeer", Source: "DialogCodeHook",
			Transition: "fulfill_order", Action: "ElicitSlot",
			Message: "I've texted you a 4 digit confirmation code. What is it?",
			Before:  map[string]string{"beers": beers}, After: map[string]string{"beers": beers, "otp": "4821"},
		},
	}
	for _, turn := range turns {
		turn.SessionID = id
		_, err := st.RecordTurn(ctx, turn)
		require.NoError(t, err)
	}
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--session", "alice"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", "/nonexistent/path/test.db", "--session", "alice"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceUnknownSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "bob"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No turns found for session: bob")
}

func TestTraceUnknownSessionJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "bob"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Timeline)
	assert.NotNil(t, resp.Data.Timeline)
}

func TestTraceWithSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "alice"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Session: alice")
	assert.Contains(t, output, "Timeline")
	assert.Contains(t, output, "[1] OrderCraftBeer -> start_order (Delegate)")
	assert.Contains(t, output, "[2] AddCraftBeer -> add_beer (ConfirmIntent)")
	assert.Contains(t, output, `"I've texted you a 4 digit confirmation code. What is it?"`)
	assert.Contains(t, output, "otp=4821")
	assert.Contains(t, output, "Stats: 3 turns, 1 codes sent, awaiting code")
	assert.NotContains(t, output, "before:")
}

func TestTraceVerboseShowsAttributes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "alice"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "id: alice-1 source: DialogCodeHook")
	assert.Contains(t, buf.String(), "before: {}")
	assert.Contains(t, buf.String(), "after:  beers=[]")
}

func TestTraceWithSessionJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "alice"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "alice", resp.Data.Session)
	require.Len(t, resp.Data.Timeline, 3)
	assert.Equal(t, int64(1), resp.Data.Timeline[0].Seq)
	assert.Equal(t, "fulfill_order", resp.Data.Timeline[2].Transition)
	assert.Equal(t, "4821", resp.Data.Attributes["otp"])
	assert.Equal(t, TraceStats{Turns: 3, CodesSent: 1, OrderOpen: true, CodeIssued: true}, resp.Data.Stats)
}

func TestTraceWithActionFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "alice", "--action", "ElicitSlot"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data.Timeline, 1)
	assert.Equal(t, "ElicitSlot", resp.Data.Timeline[0].Action)
	// Stats cover the whole session regardless of the filter.
	assert.Equal(t, 3, resp.Data.Stats.Turns)
}

func TestTraceListSessions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedSession(t, dbPath, "bob")
	seedSession(t, dbPath, "alice")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Sessions:\n  alice (3 turns)\n  bob (3 turns)\n", buf.String())
}

func TestTraceListSessionsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No sessions recorded.")
}

func TestTraceHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "--session")
	assert.Contains(t, buf.String(), "--action")
}

func TestBuildStats(t *testing.T) {
	turns := []store.Turn{
		{Before: map[string]string{}, After: map[string]string{"beers": "[]", "otp": "1111"}},
		{Before: map[string]string{"otp": "1111"}, After: map[string]string{"beers": "[]", "otp": "1111"}},
		{Before: map[string]string{"otp": "1111"}, After: map[string]string{"beers": "[]", "otp": "2222"}},
		{Before: map[string]string{"otp": "2222"}, After: map[string]string{}},
	}

	stats := buildStats(turns)
	assert.Equal(t, TraceStats{Turns: 4, CodesSent: 2}, stats)
}
