package sqlite

import (
	"context"
	"testing"

	"github.com/matthewzdanevich/task-manager-app/internal/model"
)

// newTestDB opens a fresh in-memory database per test. Each test gets its own
// schema, so tests never see each other's rows and can run in parallel.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts a user and returns it with its generated ID.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortestingonly..............",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create(%s): %v", email, err)
	}
	return user
}

// createTestTask inserts a task owned by ownerID.
func createTestTask(t *testing.T, db *DB, ownerID, description string) *model.Task {
	t.Helper()

	task := &model.Task{
		Description: description,
		OwnerID:     ownerID,
	}
	if err := db.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("Create task %q: %v", description, err)
	}
	return task
}
