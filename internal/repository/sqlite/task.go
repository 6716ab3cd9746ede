package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
	"github.com/matthewzdanevich/task-manager-app/internal/repository"
)

var _ repository.TaskRepository = (*TaskDB)(nil)

// TaskDB is the task-facing view of the database, sharing the connection
// pool with UserDB.
type TaskDB struct {
	db *DB
}

// sortColumns maps the API's sort field names to real columns. Anything not
// in this map falls back to created_at — the ORDER BY clause is assembled
// with fmt.Sprintf, so only values from this map may ever reach it.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"description": "description",
	"completed":   "completed",
}

// Create inserts a new task. The caller has already stamped OwnerID from the
// authenticated user; ID and timestamps are generated here.
func (t *TaskDB) Create(ctx context.Context, task *model.Task) error {
	now := time.Now()
	task.ID = xid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := t.db.conn.ExecContext(ctx,
		`INSERT INTO tasks (id, description, completed, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Description,
		task.Completed,
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// GetByID retrieves a single task, scoped to its owner.
//
// The WHERE clause names both id AND owner_id, so a task that exists but
// belongs to someone else produces the same sql.ErrNoRows — and therefore
// the same NotFound — as a task that doesn't exist at all. Nothing upstream
// can tell the two apart, which is exactly the point.
func (t *TaskDB) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var task model.Task

	err := t.db.conn.QueryRowContext(ctx,
		`SELECT id, description, completed, owner_id, created_at, updated_at
		 FROM tasks
		 WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	return &task, nil
}

// ListByOwner retrieves the owner's tasks with filtering, sorting, and
// limit/skip pagination. Only rows with owner_id = ownerID are visible.
func (t *TaskDB) ListByOwner(ctx context.Context, ownerID string, opts repository.TaskListOptions) ([]model.Task, error) {
	query := `SELECT id, description, completed, owner_id, created_at, updated_at
	          FROM tasks WHERE owner_id = ?`
	args := []any{ownerID}

	if opts.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, *opts.Completed)
	}

	column, ok := sortColumns[opts.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if opts.SortDir == repository.SortDesc {
		direction = "DESC"
	}
	// column and direction come from fixed maps above, never from the caller.
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)

	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 means no limit
	}
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := t.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(
			&task.ID, &task.Description, &task.Completed, &task.OwnerID,
			&task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update persists description, completed, and updated_at, scoped to the
// owner. Zero rows affected means "not yours or not there" — both NotFound.
func (t *TaskDB) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	result, err := t.db.conn.ExecContext(ctx,
		`UPDATE tasks SET description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		task.Description,
		task.Completed,
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", task.ID)
	}

	return nil
}

// Delete removes a task, scoped to the owner. Same RowsAffected pattern as
// Update for the NotFound case.
func (t *TaskDB) Delete(ctx context.Context, ownerID, id string) error {
	result, err := t.db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}

	return nil
}
