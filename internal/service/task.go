package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
	"github.com/matthewzdanevich/task-manager-app/internal/repository"
)

const (
	MaxDescriptionLength = 1000
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// TaskService handles business logic for tasks. Every method takes the
// authenticated owner as its first domain argument — there is no way to ask
// this service about anyone else's tasks.
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// TaskUpdate carries the whitelisted task fields for a partial update.
// Nil means "leave unchanged"; the handler rejects any request key outside
// {description, completed} before constructing this.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// Create validates and saves a new task for the owner.
//
// The owner comes exclusively from the authenticated principal. If a request
// body smuggles in an "owner" field, the handler has already refused it —
// and even if it hadn't, nothing here reads it.
func (s *TaskService) Create(ctx context.Context, owner *model.User, description string, completed bool) (*model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "task description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("task description must be %d characters or less", MaxDescriptionLength))
	}

	task := &model.Task{
		Description: description,
		Completed:   completed,
		OwnerID:     owner.ID,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.String("ownerID", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("id", task.ID),
		slog.String("ownerID", owner.ID),
	)

	return task, nil
}

// List retrieves the owner's tasks. The limit is clamped to a sane range so
// a caller can't request the entire table, and skip can't go negative.
func (s *TaskService) List(ctx context.Context, owner *model.User, opts repository.TaskListOptions) ([]model.Task, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	tasks, err := s.repo.ListByOwner(ctx, owner.ID, opts)
	if err != nil {
		s.logger.Error("failed to list tasks",
			slog.String("ownerID", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves one of the owner's tasks. A task that exists under a
// different owner yields the same NotFound as a missing ID — the repository
// query can't even see it.
func (s *TaskService) GetByID(ctx context.Context, owner *model.User, id string) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}

	return s.repo.GetByID(ctx, owner.ID, id)
}

// Update applies a whitelisted partial update to one of the owner's tasks.
// Fetch-then-update: the NotFound (including the not-owned case) surfaces
// before any field is touched, and validation completes before the write.
func (s *TaskService) Update(ctx context.Context, owner *model.User, id string, upd TaskUpdate) (*model.Task, error) {
	task, err := s.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if upd.Description != nil {
		description := strings.TrimSpace(*upd.Description)
		if description == "" {
			return nil, apperror.ValidationFailed("description", "task description is required")
		}
		if len(description) > MaxDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("task description must be %d characters or less", MaxDescriptionLength))
		}
		task.Description = description
	}

	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		slog.String("id", task.ID),
		slog.String("ownerID", owner.ID),
	)

	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, owner *model.User, id string) (*model.Task, error) {
	// Fetch first so the confirmation message can name the task.
	task, err := s.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, owner.ID, id); err != nil {
		return nil, err
	}

	s.logger.Info("task deleted",
		slog.String("id", id),
		slog.String("ownerID", owner.ID),
	)

	return task, nil
}
