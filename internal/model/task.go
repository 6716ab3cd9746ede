package model

import "time"

// Task represents a single to-do item belonging to exactly one user.
//
// OwnerID is set by the service from the authenticated user and is immutable
// after creation — it is never read from a request payload, so a client
// cannot create or move a task into someone else's account.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
