package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by LoadSession for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Session is a stored attribute bag.
type Session struct {
	ID         string
	Attributes map[string]string
	Seq        int64
}

// LoadSession returns the latest attributes for id.
//
// Returns ErrSessionNotFound if the session has never been saved.
func (s *Store) LoadSession(ctx context.Context, id string) (Session, error) {
	var text string
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT attributes, seq FROM sessions WHERE id = ?
	`, id).Scan(&text, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("load session %q: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session %q: %w", id, err)
	}

	attrs, err := unmarshalAttributes(text)
	if err != nil {
		return Session{}, fmt.Errorf("load session %q: %w", id, err)
	}
	return Session{ID: id, Attributes: attrs, Seq: seq}, nil
}

// SaveSession replaces the attributes for id without recording a turn.
// It is used to seed a session before the first turn.
func (s *Store) SaveSession(ctx context.Context, id string, attrs map[string]string) error {
	text, err := marshalAttributes(attrs)
	if err != nil {
		return fmt.Errorf("save session %q: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, attributes, seq) VALUES (?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET attributes = excluded.attributes
	`, id, text)
	if err != nil {
		return fmt.Errorf("save session %q: %w", id, err)
	}
	return nil
}

// ListSessions returns every stored session ordered by id.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, attributes, seq FROM sessions ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		var text string
		if err := rows.Scan(&sess.ID, &text, &sess.Seq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Attributes, err = unmarshalAttributes(text); err != nil {
			return nil, fmt.Errorf("session %q: %w", sess.ID, err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
