// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and small option structs, never HTTP types, and
// return domain errors from internal/apperror, never status codes. The
// handler translates in both directions.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/auth"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
	"github.com/matthewzdanevich/task-manager-app/internal/notify"
	"github.com/matthewzdanevich/task-manager-app/internal/repository"
)

// MaxIconSize caps the stored profile image at 2 MiB. The upload pipeline
// (resizing, format conversion) lives outside the core; this is only the
// storage guard.
const MaxIconSize = 2 << 20

// UserService is the credential store: it owns registration, login, the
// session set, profile updates, and account deletion with its cascade.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	notifier  notify.Notifier
	logger    *slog.Logger
}

// NewUserService wires the credential store.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	notifier notify.Notifier,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		notifier:  notifier,
		logger:    logger,
	}
}

// AuthResult bundles a user with a freshly issued session token, so the
// handler can respond to register/login in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// ProfileUpdate carries the whitelisted profile fields. A nil pointer means
// "leave unchanged". The handler is responsible for rejecting any request
// key outside {name, email, password} before this struct is ever built, so
// a disallowed field can never partially apply.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// Register creates an account and logs it in.
//
// Validation order: name, email syntax, password policy — all before any
// hashing or storage, so a rejected registration leaves zero traces. The
// plaintext password exists only on the stack here and inside bcrypt; it is
// never persisted and never logged.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	// The repository returns Conflict on a duplicate email; the handler maps
	// that to the same 400 as any other registration problem.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	s.notifier.AccountCreated(user.Email, user.Name)

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a new session token.
//
// A missing field is a validation problem (the caller forgot something), but
// once both fields are present every failure — unknown email or wrong
// password — is the same Unauthorized. Responding differently for the two
// would let anyone probe which addresses have accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// verifyCredentials looks up the user by normalized email and checks the
// password against the stored hash. Both failure modes collapse to the one
// Unauthorized error; the real cause is logged at debug level only.
func (s *UserService) verifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		s.logger.Debug("login failed", slog.String("reason", "unknown email"))
		return nil, apperror.Unauthorized()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Debug("login failed", slog.String("reason", "password mismatch"))
		return nil, apperror.Unauthorized()
	}

	return user, nil
}

// startSession issues a token and persists it in the user's session set.
// The in-memory Sessions slice is kept in sync so the returned user reflects
// the new session without a re-read.
func (s *UserService) startSession(ctx context.Context, user *model.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	if err := s.users.AddSession(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("service/user: persisting session: %w", err)
	}
	user.Sessions = append(user.Sessions, token)

	return token, nil
}

// GetByID resolves a user ID to the full record, session set included.
// This is the lookup the authentication gate performs on every request.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// Logout removes exactly one session — the token the request arrived with.
// Other sessions of the same user stay valid.
func (s *UserService) Logout(ctx context.Context, user *model.User, token string) error {
	if err := s.users.RemoveSession(ctx, user.ID, token); err != nil {
		return fmt.Errorf("service/user: removing session: %w", err)
	}
	s.logger.Info("user logged out", slog.String("userID", user.ID))
	return nil
}

// LogoutAll empties the user's session set. Every outstanding token dies,
// including the one used to make this request.
func (s *UserService) LogoutAll(ctx context.Context, user *model.User) error {
	if err := s.users.ClearSessions(ctx, user.ID); err != nil {
		return fmt.Errorf("service/user: clearing sessions: %w", err)
	}
	s.logger.Info("user logged out everywhere", slog.String("userID", user.ID))
	return nil
}

// UpdateProfile applies a whitelisted partial update. A new password passes
// the same policy as registration and is re-hashed; the old hash is never
// reused. Validation of every provided field completes before anything is
// written, so a bad value in one field cannot half-apply the rest.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) (*model.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "name is required")
		}
		user.Name = name
	}

	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if upd.Password != nil {
		if err := auth.ValidatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return user, nil
}

// UpdateIcon stores the user's profile image. Size is capped; content is
// otherwise opaque to the core (no resizing here).
func (s *UserService) UpdateIcon(ctx context.Context, user *model.User, icon []byte) error {
	if len(icon) == 0 {
		return apperror.ValidationFailed("icon", "icon data is required")
	}
	if len(icon) > MaxIconSize {
		return apperror.ValidationFailed("icon",
			fmt.Sprintf("icon must be %d bytes or fewer", MaxIconSize))
	}
	if err := s.users.SetIcon(ctx, user.ID, icon); err != nil {
		return err
	}
	user.Icon = icon
	return nil
}

// RemoveIcon deletes the stored profile image.
func (s *UserService) RemoveIcon(ctx context.Context, user *model.User) error {
	if err := s.users.SetIcon(ctx, user.ID, nil); err != nil {
		return err
	}
	user.Icon = nil
	return nil
}

// DeleteAccount removes the user, all their tasks, and all their sessions as
// one operation. The repository runs the cascade in a transaction; if any
// part fails the whole deletion fails and the account remains intact — the
// goodbye notification fires only after the commit.
func (s *UserService) DeleteAccount(ctx context.Context, user *model.User) error {
	if err := s.users.DeleteCascade(ctx, user.ID); err != nil {
		s.logger.Error("account deletion failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/user: deleting account: %w", err)
	}

	s.logger.Info("account deleted", slog.String("userID", user.ID))
	s.notifier.AccountDeleted(user.Email, user.Name)
	return nil
}

// normalizeEmail trims, lowercases, and validates syntax.
// mail.ParseAddress also accepts "Name <a@b>" forms; requiring the parsed
// address to round-trip to the input rejects those.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "the email address is invalid")
	}
	return email, nil
}
