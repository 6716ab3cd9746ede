package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
	"github.com/matthewzdanevich/task-manager-app/internal/repository"
)

// Compile-time check that *UserDB implements repository.UserRepository.
// `var _ X = (*Y)(nil)` fails the build the moment a method goes missing,
// instead of at some distant call site.
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the user-facing view of the database. It shares the connection
// pool with TaskDB; the split exists so each repository can use natural
// method names (Create, GetByID, ...) without colliding on one type.
type UserDB struct {
	db *DB
}

// Create inserts a new user. ID and timestamps are generated here, so after
// a successful call the caller's struct carries the canonical record.
//
// Email uniqueness is enforced by the UNIQUE column constraint, not by a
// check-then-insert read: two concurrent registrations with the same address
// can both pass a pre-check, but only one can win the constraint.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.Sessions = nil
	return nil
}

// GetByID retrieves a user with their session set populated.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getUser(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a user by their lowercase-normalized email address.
// Callers normalize before lookup; the column stores normalized values only.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getUser(ctx, `WHERE email = ?`, email)
}

func (u *UserDB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User

	err := u.db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, icon, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Icon,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	sessions, err := u.listSessions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Sessions = sessions

	return &user, nil
}

// Update persists name, email, password hash, and updated_at.
// ID, created_at, icon, and sessions are not touched here — icon has its own
// mutator and sessions live in their own table.
func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := u.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// SetIcon stores (or clears, with nil) the user's profile image blob.
func (u *UserDB) SetIcon(ctx context.Context, userID string, icon []byte) error {
	result, err := u.db.conn.ExecContext(ctx,
		`UPDATE users SET icon = ?, updated_at = ? WHERE id = ?`,
		icon, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting icon for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}

	return nil
}

// DeleteCascade removes a user together with every task they own and every
// session they hold, in a single transaction. If any statement fails nothing
// commits — there is no state where the user is gone but their tasks remain,
// or the reverse.
func (u *UserDB) DeleteCascade(ctx context.Context, userID string) error {
	tx, err := u.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning cascade transaction: %w", err)
	}
	// Rollback after a successful Commit is a harmless no-op.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE owner_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: cascade deleting tasks for user %s: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: cascade deleting sessions for user %s: %w", userID, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing cascade for user %s: %w", userID, err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite exposes no typed error for this, so the message is the
// only signal available.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
