package store

import (
	"context"
	"fmt"
)

// Turn is one recorded turn of a session.
type Turn struct {
	ID         string
	SessionID  string
	Seq        int64
	Intent     string
	Source     string
	Transition string
	Action     string
	Message    string
	Before     map[string]string
	After      map[string]string
}

// RecordTurn appends t to the turn log and stores t.After as the session's
// attributes, atomically. The session is created if needed.
//
// The assigned seq is returned; t.Seq is ignored.
func (s *Store) RecordTurn(ctx context.Context, t Turn) (int64, error) {
	before, err := marshalAttributes(t.Before)
	if err != nil {
		return 0, fmt.Errorf("record turn: %w", err)
	}
	after, err := marshalAttributes(t.After)
	if err != nil {
		return 0, fmt.Errorf("record turn: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record turn: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (id, attributes, seq) VALUES (?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET attributes = excluded.attributes, seq = sessions.seq + 1
		RETURNING seq
	`, t.SessionID, after).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("record turn: update session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns
		(id, session_id, seq, intent, source, transition, action, message, attributes_before, attributes_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.SessionID,
		seq,
		t.Intent,
		t.Source,
		t.Transition,
		t.Action,
		t.Message,
		before,
		after,
	)
	if err != nil {
		return 0, fmt.Errorf("record turn: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record turn: commit: %w", err)
	}
	return seq, nil
}

// ListTurns returns the turns of a session in order.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the session has no turns.
func (s *Store) ListTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, intent, source, transition, action, message,
		       attributes_before, attributes_after
		FROM turns
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		var before, after string
		if err := rows.Scan(
			&t.ID, &t.SessionID, &t.Seq, &t.Intent, &t.Source, &t.Transition,
			&t.Action, &t.Message, &before, &after,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if t.Before, err = unmarshalAttributes(before); err != nil {
			return nil, fmt.Errorf("turn %s: %w", t.ID, err)
		}
		if t.After, err = unmarshalAttributes(after); err != nil {
			return nil, fmt.Errorf("turn %s: %w", t.ID, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}
