// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY json:"-" ON SOME FIELDS?
// The User struct is serialized directly in API responses, so anything a
// client must never see is excluded at the type level rather than by
// hand-copying fields into a separate view struct. PasswordHash, the active
// session tokens, and the raw icon blob are all invisible to encoding/json —
// that single rule IS the public projection.
//
// WHY Sessions []string?
// Each login appends a signed token; each logout removes exactly one. A token
// that no longer appears here is dead even if its signature still verifies —
// the session set, not the signature, is the source of truth for revocation.
// The slice is ordered oldest-first (insertion order in the sessions table).
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // lowercase-normalized, unique
	PasswordHash string    `json:"-"`     // bcrypt output, never the plaintext
	Sessions     []string  `json:"-"`     // active session tokens, oldest first
	Icon         []byte    `json:"-"`     // optional profile image, nil by default
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasSession reports whether token is currently in the user's session set.
func (u *User) HasSession(token string) bool {
	for _, t := range u.Sessions {
		if t == token {
			return true
		}
	}
	return false
}
