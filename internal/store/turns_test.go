package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadSession(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSaveSession_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	attrs := map[string]string{"beers": `[{"id":177,"name":"Yenda Pale Ale"}]`, "otp": "4821"}

	require.NoError(t, s.SaveSession(ctx, "s1", attrs))

	got, err := s.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, attrs, got.Attributes)
	assert.Equal(t, int64(0), got.Seq)
}

func TestSaveSession_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "s1", map[string]string{"beers": "[]"}))
	require.NoError(t, s.SaveSession(ctx, "s1", nil))

	got, err := s.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{}, got.Attributes)
}

func TestSaveSession_CanonicalJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "s1", map[string]string{"otp": "1234", "beers": "[]"}))

	var text string
	require.NoError(t, s.db.QueryRow("SELECT attributes FROM sessions WHERE id = 's1'").Scan(&text))
	assert.Equal(t, `{"beers":"[]","otp":"1234"}`, text)
}

func TestRecordTurn_AssignsSeqAndUpdatesSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.RecordTurn(ctx, Turn{
		ID:         "turn-1",
		SessionID:  "s1",
		Intent:     "OrderCraftBeer",
		Source:     "DialogCodeHook",
		Transition: "start_order",
		Action:     "Delegate",
		Before:     map[string]string{},
		After:      map[string]string{"beers": "[]"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = s.RecordTurn(ctx, Turn{
		ID:         "turn-2",
		SessionID:  "s1",
		Intent:     "OrderCraftBeer",
		Source:     "DialogCodeHook",
		Transition: "cancel_order",
		Action:     "Close",
		Message:    "Goodbye",
		Before:     map[string]string{"beers": "[]"},
		After:      map[string]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	sess, err := s.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sess.Seq)
	assert.Empty(t, sess.Attributes)

	turns, err := s.ListTurns(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "turn-1", turns[0].ID)
	assert.Equal(t, int64(1), turns[0].Seq)
	assert.Equal(t, map[string]string{"beers": "[]"}, turns[0].After)
	assert.Equal(t, "turn-2", turns[1].ID)
	assert.Equal(t, "Goodbye", turns[1].Message)
	assert.Equal(t, map[string]string{"beers": "[]"}, turns[1].Before)
	assert.Equal(t, map[string]string{}, turns[1].After)
}

func TestRecordTurn_ContinuesSeededSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "s1", map[string]string{"beers": "[133]"}))
	seq, err := s.RecordTurn(ctx, Turn{ID: "t1", SessionID: "s1", Intent: "x", Source: "y", Transition: "z", Action: "Close"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestRecordTurn_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	turn := Turn{ID: "t1", SessionID: "s1", Intent: "x", Source: "y", Transition: "z", Action: "Close"}

	_, err := s.RecordTurn(ctx, turn)
	require.NoError(t, err)

	turn.After = map[string]string{"otp": "9999"}
	_, err = s.RecordTurn(ctx, turn)
	require.Error(t, err)

	sess, err := s.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.Seq)
	assert.Empty(t, sess.Attributes)
}

func TestListTurns_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	turns, err := s.ListTurns(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestListTurns_IsolatedBySession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, sid := range []string{"a", "b", "a"} {
		_, err := s.RecordTurn(ctx, Turn{
			ID: fmt.Sprintf("%s-%d", sid, i), SessionID: sid,
			Intent: "OrderCraftBeer", Source: "DialogCodeHook", Transition: "start_order", Action: "Delegate",
		})
		require.NoError(t, err)
	}

	a, err := s.ListTurns(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, a, 2)
	assert.Equal(t, []int64{1, 2}, []int64{a[0].Seq, a[1].Seq})

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, int64(2), sessions[0].Seq)
	assert.Equal(t, "b", sessions[1].ID)
}

func TestStore_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beerbot.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.RecordTurn(ctx, Turn{ID: "t1", SessionID: "s1", Intent: "x", Source: "y", Transition: "z", Action: "Close",
		After: map[string]string{"otp": "4821"}})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	sess, err := s2.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "4821", sess.Attributes["otp"])
}
