package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, photo, bio, instagram, twitter, website,
	password_hash, created_at, updated_at`

// CreateUser inserts a new user. The ID (an xid — sortable, URL-safe) and
// timestamps are generated here so the caller gets back the persisted record.
// A duplicate email surfaces as a Conflict error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.Photo,
		user.Bio,
		user.Instagram,
		user.Twitter,
		user.Website,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by their unique email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, "email", email)
}

func (db *DB) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	err := db.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Photo,
		&u.Bio,
		&u.Instagram,
		&u.Twitter,
		&u.Website,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s %s: %w", column, value, err)
	}

	return &u, nil
}

// UpdateUser applies a partial patch: only non-nil fields change. The SET
// clause is assembled dynamically because "field omitted" and "field set to
// empty" are different things — see model.UserPatch.
func (db *DB) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Photo != nil {
		appendSet("photo", *patch.Photo)
	}
	if patch.Bio != nil {
		appendSet("bio", *patch.Bio)
	}
	if patch.Instagram != nil {
		appendSet("instagram", *patch.Instagram)
	}
	if patch.Twitter != nil {
		appendSet("twitter", *patch.Twitter)
	}
	if patch.Website != nil {
		appendSet("website", *patch.Website)
	}

	if len(sets) == 0 {
		// Nothing to change — return the current row.
		return db.GetUserByID(ctx, id)
	}

	appendSet("updated_at", time.Now())
	args = append(args, id)

	result, err := db.q.ExecContext(ctx,
		`UPDATE users SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return db.GetUserByID(ctx, id)
}

// DeleteUser removes a user. Their host and rsvp rows cascade via foreign
// keys; callers must deal with solo-hosted events BEFORE calling this (the
// cascade would otherwise strand events with zero hosts).
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
