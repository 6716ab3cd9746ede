// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/matthewzdanevich/task-manager-app/internal/model"
)

// SortDirection for task listings.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskListOptions narrows and pages an owner's task listing.
//
// Filtering is limited to the completed flag, sorting to a single whitelisted
// field plus direction, pagination to limit/skip. Ownership is NOT an option:
// every query is scoped to an owner by the repository method itself.
type TaskListOptions struct {
	Completed *bool         // nil = no filter
	SortField string        // "createdAt", "description" or "completed"; "" = createdAt
	SortDir   SortDirection // defaults to ascending
	Limit     int
	Skip      int
}

// UserRepository persists user identities, credential hashes, and session
// sets. Session tokens ride on the User model: Create/GetByID/GetByEmail
// return users with Sessions populated, and the session mutators operate on
// the stored set directly.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail looks up by the lowercase-normalized address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error

	AddSession(ctx context.Context, userID, token string) error
	RemoveSession(ctx context.Context, userID, token string) error
	ClearSessions(ctx context.Context, userID string) error

	SetIcon(ctx context.Context, userID string, icon []byte) error

	// DeleteCascade removes the user, every task they own, and all their
	// sessions in one transaction. Partial deletion never commits.
	DeleteCascade(ctx context.Context, userID string) error
}

// TaskRepository persists tasks. Every read and write is scoped by ownerID;
// there is deliberately no way to address a task without naming its owner,
// so "exists but belongs to someone else" and "does not exist" are the same
// NotFound from the caller's point of view.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID string, opts TaskListOptions) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, id string) error
}
