package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/auth"
	"github.com/matthewzdanevich/task-manager-app/internal/repository"
	"github.com/matthewzdanevich/task-manager-app/internal/service"
)

// TaskHandler exposes the owner-scoped task CRUD over HTTP. Every route it
// serves sits behind RequireAuth, so the user is always present in the
// context by the time these methods run.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// HandleCreate saves a new task owned by the requester.
//
// HTTP: POST /tasks
// Body: {"description": "...", "completed": false}
//
// "owner" is not in the allowed set: a body that tries to assign ownership
// is a 400, and the service stamps the owner from the context regardless.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	fields, err := decodeFields(r, "description", "completed")
	if err != nil {
		writeError(w, err)
		return
	}

	description, err := requiredString(fields, "description")
	if err != nil {
		writeError(w, err)
		return
	}
	completed, err := optionalField[bool](fields, "completed")
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user, description, completed != nil && *completed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleList returns the requester's tasks.
//
// HTTP: GET /tasks?completed=true&sort=createdAt:desc&limit=20&skip=0
//
// Query parameters mirror the original API: completed filters, sort is one
// "field:direction" pair, limit/skip page. Unknown sort fields fall back to
// creation order rather than erroring.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), user, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleGetByID returns one of the requester's tasks.
//
// HTTP: GET /tasks/{id}
// 404 covers both "no such task" and "someone else's task".
func (h *TaskHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	task, err := h.tasks.GetByID(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate applies a partial update to one of the requester's tasks.
// Allowed fields: description, completed.
//
// HTTP: PATCH /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	fields, err := decodeFields(r, "description", "completed")
	if err != nil {
		writeError(w, err)
		return
	}

	var upd service.TaskUpdate
	if upd.Description, err = optionalField[string](fields, "description"); err != nil {
		writeError(w, err)
		return
	}
	if upd.Completed, err = optionalField[bool](fields, "completed"); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user, chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes one of the requester's tasks.
//
// HTTP: DELETE /tasks/{id}
// 200 with a confirmation message naming the task, as the original API did.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	task, err := h.tasks.Delete(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Task %q has been deleted", task.Description),
	})
}

// parseListOptions translates list query parameters into repository options.
func parseListOptions(r *http.Request) (repository.TaskListOptions, error) {
	var opts repository.TaskListOptions
	query := r.URL.Query()

	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apperror.ValidationFailed("completed", "completed must be true or false")
		}
		opts.Completed = &completed
	}

	if raw := query.Get("sort"); raw != "" {
		field, direction, _ := strings.Cut(raw, ":")
		opts.SortField = field
		if direction == "desc" {
			opts.SortDir = repository.SortDesc
		} else {
			opts.SortDir = repository.SortAsc
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apperror.ValidationFailed("limit", "limit must be an integer")
		}
		opts.Limit = limit
	}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apperror.ValidationFailed("skip", "skip must be an integer")
		}
		opts.Skip = skip
	}

	return opts, nil
}
