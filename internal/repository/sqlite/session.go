package sqlite

import (
	"context"
	"fmt"
	"time"
)

// AddSession appends a token to the user's session set.
func (u *UserDB) AddSession(ctx context.Context, userID, token string) error {
	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding session for user %s: %w", userID, err)
	}
	return nil
}

// RemoveSession removes exactly one token from the user's session set.
// Removing a token that is already gone is not an error — logout is
// idempotent, and two concurrent logouts of the same session both succeed.
func (u *UserDB) RemoveSession(ctx context.Context, userID, token string) error {
	_, err := u.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ? AND user_id = ?`,
		token, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing session for user %s: %w", userID, err)
	}
	return nil
}

// ClearSessions empties the user's session set (logout everywhere).
func (u *UserDB) ClearSessions(ctx context.Context, userID string) error {
	_, err := u.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing sessions for user %s: %w", userID, err)
	}
	return nil
}

// listSessions returns the user's tokens oldest-first. Insertion order and
// created_at order coincide, but created_at has one-second resolution, so
// rowid breaks ties for tokens issued within the same second.
func (u *UserDB) listSessions(ctx context.Context, userID string) ([]string, error) {
	rows, err := u.db.conn.QueryContext(ctx,
		`SELECT token FROM sessions WHERE user_id = ? ORDER BY created_at, rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session row: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sessions: %w", err)
	}

	return tokens, nil
}
