package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// compile-time check that *DB implements repository.RsvpRepository
var _ repository.RsvpRepository = (*DB)(nil)

// CreateRsvp inserts an rsvp row. A missing PartySize defaults to 1 here so
// the persisted record always carries an explicit head count. A duplicate
// (event, user) pair surfaces as Conflict.
func (db *DB) CreateRsvp(ctx context.Context, rsvp *model.Rsvp) error {
	if rsvp.PartySize <= 0 {
		rsvp.PartySize = 1
	}
	now := time.Now()
	rsvp.CreatedAt = now
	rsvp.UpdatedAt = now

	_, err := db.q.ExecContext(ctx,
		`INSERT INTO rsvps (event_id, user_id, status, name, party_size, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rsvp.EventID,
		rsvp.UserID,
		string(rsvp.Status),
		rsvp.Name,
		rsvp.PartySize,
		rsvp.CreatedAt,
		rsvp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("rsvp", rsvp.EventID+"/"+rsvp.UserID)
		}
		return fmt.Errorf("sqlite: creating rsvp (event=%s user=%s): %w",
			rsvp.EventID, rsvp.UserID, err)
	}

	return nil
}

// GetRsvp retrieves the rsvp for the (event, user) pair.
func (db *DB) GetRsvp(ctx context.Context, eventID, userID string) (*model.Rsvp, error) {
	var r model.Rsvp

	err := db.q.QueryRowContext(ctx,
		`SELECT event_id, user_id, status, name, party_size, created_at, updated_at
		 FROM rsvps WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	).Scan(&r.EventID, &r.UserID, &r.Status, &r.Name, &r.PartySize, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("rsvp", eventID+"/"+userID)
		}
		return nil, fmt.Errorf("sqlite: getting rsvp (event=%s user=%s): %w",
			eventID, userID, err)
	}

	return &r, nil
}

// ListRsvpsByEvent returns an event's guest list, optionally filtered by
// status, oldest response first.
func (db *DB) ListRsvpsByEvent(ctx context.Context, eventID string, filter repository.RsvpFilter) ([]model.Rsvp, error) {
	query := `SELECT event_id, user_id, status, name, party_size, created_at, updated_at
		 FROM rsvps WHERE event_id = ?`
	args := []any{eventID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing rsvps for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var rsvps []model.Rsvp
	for rows.Next() {
		var r model.Rsvp
		if err := rows.Scan(&r.EventID, &r.UserID, &r.Status, &r.Name,
			&r.PartySize, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning rsvp row: %w", err)
		}
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating rsvps: %w", err)
	}

	return rsvps, nil
}

// UpdateRsvp applies a partial patch to one rsvp and returns the updated row.
func (db *DB) UpdateRsvp(ctx context.Context, eventID, userID string, patch model.RsvpPatch) (*model.Rsvp, error) {
	sets, args := rsvpPatchSets(patch)
	if len(sets) == 0 {
		return db.GetRsvp(ctx, eventID, userID)
	}

	args = append(args, eventID, userID)
	result, err := db.q.ExecContext(ctx,
		`UPDATE rsvps SET `+joinSets(sets)+` WHERE event_id = ? AND user_id = ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating rsvp (event=%s user=%s): %w",
			eventID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("rsvp", eventID+"/"+userID)
	}

	return db.GetRsvp(ctx, eventID, userID)
}

// UpdateRsvps is the batch variant: it patches every rsvp of the event
// matching the filter and reports how many rows changed. Zero matches is not
// an error.
func (db *DB) UpdateRsvps(ctx context.Context, eventID string, filter repository.RsvpFilter, patch model.RsvpPatch) (int64, error) {
	sets, args := rsvpPatchSets(patch)
	if len(sets) == 0 {
		return 0, nil
	}

	query := `UPDATE rsvps SET ` + joinSets(sets) + ` WHERE event_id = ?`
	args = append(args, eventID)
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: bulk updating rsvps for event %s: %w", eventID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

// DeleteRsvp removes a single rsvp row.
func (db *DB) DeleteRsvp(ctx context.Context, eventID, userID string) error {
	result, err := db.q.ExecContext(ctx,
		`DELETE FROM rsvps WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting rsvp (event=%s user=%s): %w",
			eventID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("rsvp", eventID+"/"+userID)
	}

	return nil
}

// DeleteRsvps removes every rsvp of the event matching the filter and
// reports how many rows went away. Zero matches is not an error.
func (db *DB) DeleteRsvps(ctx context.Context, eventID string, filter repository.RsvpFilter) (int64, error) {
	query := `DELETE FROM rsvps WHERE event_id = ?`
	args := []any{eventID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: bulk deleting rsvps for event %s: %w", eventID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

// rsvpPatchSets assembles the SET clause for an rsvp patch. updated_at is
// always touched when any field changes.
func rsvpPatchSets(patch model.RsvpPatch) ([]string, []any) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.PartySize != nil {
		sets = append(sets, "party_size = ?")
		args = append(args, *patch.PartySize)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now())
	}

	return sets, args
}
