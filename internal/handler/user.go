package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/auth"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
	"github.com/matthewzdanevich/task-manager-app/internal/service"
)

// UserHandler exposes registration, login, session management, and profile
// operations over HTTP.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// authResponse is the register/login response body. The embedded user
// serializes through its public projection (sensitive fields carry json:"-").
type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// HandleRegister creates an account.
//
// HTTP: POST /users
// Body: {"name": "...", "email": "...", "password": "..."}
// 201 {"user": ..., "token": "..."} | 400 on any validation or duplicate.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "name", "email", "password")
	if err != nil {
		writeError(w, err)
		return
	}

	name, err := requiredString(fields, "name")
	if err != nil {
		writeError(w, err)
		return
	}
	email, err := requiredString(fields, "email")
	if err != nil {
		writeError(w, err)
		return
	}
	password, err := requiredString(fields, "password")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.Register(r.Context(), name, email, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// HandleLogin verifies credentials and opens a new session.
//
// HTTP: POST /users/login
// 200 {"user": ..., "token": "..."} | 400 missing field | 401 bad credentials.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "email", "password")
	if err != nil {
		writeError(w, err)
		return
	}

	email, err := requiredString(fields, "email")
	if err != nil {
		writeError(w, err)
		return
	}
	password, err := requiredString(fields, "password")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.users.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// HandleLogout closes the session the request arrived on. Other sessions of
// the same user survive.
//
// HTTP: POST /users/logout
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	token, _ := auth.TokenFromContext(r.Context())

	if err := h.users.Logout(r.Context(), user, token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// HandleLogoutAll closes every session of the authenticated user.
//
// HTTP: POST /users/logout-all
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.users.LogoutAll(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out everywhere"})
}

// HandleGetProfile returns the authenticated user's public projection.
//
// HTTP: GET /users/me
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile applies a partial update to the authenticated user.
// Allowed fields: name, email, password. Any other key → 400 before any
// field is applied.
//
// HTTP: PATCH /users/me
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	fields, err := decodeFields(r, "name", "email", "password")
	if err != nil {
		writeError(w, err)
		return
	}

	var upd service.ProfileUpdate
	if upd.Name, err = optionalField[string](fields, "name"); err != nil {
		writeError(w, err)
		return
	}
	if upd.Email, err = optionalField[string](fields, "email"); err != nil {
		writeError(w, err)
		return
	}
	if upd.Password, err = optionalField[string](fields, "password"); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteProfile deletes the account. The response is written only
// after the cascade (tasks + sessions + user) has committed.
//
// HTTP: DELETE /users/me
func (h *UserHandler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.users.DeleteAccount(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// HandleUploadIcon stores the raw request body as the user's profile image.
// Resizing and format validation belong to the upload pipeline outside the
// core; the only rule enforced here is the size cap.
//
// HTTP: PUT /users/me/avatar
func (h *UserHandler) HandleUploadIcon(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	// +1 so a body exactly at the limit is distinguishable from one over it.
	icon, err := io.ReadAll(io.LimitReader(r.Body, service.MaxIconSize+1))
	if err != nil {
		writeError(w, apperror.ValidationFailed("icon", "could not read icon data"))
		return
	}

	if err := h.users.UpdateIcon(r.Context(), user, icon); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Icon uploaded"})
}

// HandleGetIcon serves the stored profile image bytes.
//
// HTTP: GET /users/me/avatar
func (h *UserHandler) HandleGetIcon(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if len(user.Icon) == 0 {
		writeError(w, apperror.NotFound("icon", user.ID))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(user.Icon); err != nil {
		h.logger.Error("failed to write icon response", slog.String("error", err.Error()))
	}
}

// HandleDeleteIcon removes the stored profile image.
//
// HTTP: DELETE /users/me/avatar
func (h *UserHandler) HandleDeleteIcon(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.users.RemoveIcon(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Icon deleted"})
}
