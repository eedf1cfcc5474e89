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

// compile-time check that *DB implements repository.HostRepository
var _ repository.HostRepository = (*DB)(nil)

// CreateHost inserts a host row. The composite primary key means a second
// insert for the same (event, user) pair fails — that surfaces as Conflict.
// A missing event or user trips the foreign key instead; that propagates as
// a plain error because the service layer checks existence first.
func (db *DB) CreateHost(ctx context.Context, host *model.Host) error {
	host.CreatedAt = time.Now()

	_, err := db.q.ExecContext(ctx,
		`INSERT INTO hosts (event_id, user_id, name, created_at)
		 VALUES (?, ?, ?, ?)`,
		host.EventID,
		host.UserID,
		host.Name,
		host.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("host", host.EventID+"/"+host.UserID)
		}
		return fmt.Errorf("sqlite: creating host (event=%s user=%s): %w",
			host.EventID, host.UserID, err)
	}

	return nil
}

// GetHost retrieves the host row for the (event, user) pair.
func (db *DB) GetHost(ctx context.Context, eventID, userID string) (*model.Host, error) {
	var h model.Host

	err := db.q.QueryRowContext(ctx,
		`SELECT event_id, user_id, name, created_at
		 FROM hosts WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	).Scan(&h.EventID, &h.UserID, &h.Name, &h.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("host", eventID+"/"+userID)
		}
		return nil, fmt.Errorf("sqlite: getting host (event=%s user=%s): %w",
			eventID, userID, err)
	}

	return &h, nil
}

// ListHostsByEvent returns all hosts of an event, oldest first, so the
// original creator stays at the top of the list.
func (db *DB) ListHostsByEvent(ctx context.Context, eventID string) ([]model.Host, error) {
	return db.listHosts(ctx, "event_id", eventID)
}

// ListHostsByUser returns every host row held by a user across all events.
func (db *DB) ListHostsByUser(ctx context.Context, userID string) ([]model.Host, error) {
	return db.listHosts(ctx, "user_id", userID)
}

func (db *DB) listHosts(ctx context.Context, column, value string) ([]model.Host, error) {
	rows, err := db.q.QueryContext(ctx,
		`SELECT event_id, user_id, name, created_at
		 FROM hosts WHERE `+column+` = ?
		 ORDER BY created_at ASC`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing hosts by %s %s: %w", column, value, err)
	}
	defer rows.Close()

	var hosts []model.Host
	for rows.Next() {
		var h model.Host
		if err := rows.Scan(&h.EventID, &h.UserID, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning host row: %w", err)
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating hosts: %w", err)
	}

	return hosts, nil
}

// CountHosts returns the number of hosts an event currently has. Run inside
// InTx when the count feeds a sole-host decision — the check must hold at
// commit time.
func (db *DB) CountHosts(ctx context.Context, eventID string) (int, error) {
	var count int
	err := db.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hosts WHERE event_id = ?`, eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting hosts for event %s: %w", eventID, err)
	}
	return count, nil
}

// ListSoloHostedEvents returns the IDs of events where this user is the only
// host. These are the events that cannot survive the user's removal.
func (db *DB) ListSoloHostedEvents(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.q.QueryContext(ctx,
		`SELECT event_id FROM hosts
		 WHERE user_id = ?
		   AND event_id IN (
		     SELECT event_id FROM hosts GROUP BY event_id HAVING COUNT(*) = 1
		   )
		 ORDER BY event_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing solo-hosted events for user %s: %w", userID, err)
	}
	defer rows.Close()

	var eventIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning solo-hosted event id: %w", err)
		}
		eventIDs = append(eventIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating solo-hosted events: %w", err)
	}

	return eventIDs, nil
}

// UpdateHost patches a host's display name.
func (db *DB) UpdateHost(ctx context.Context, eventID, userID string, patch model.HostPatch) (*model.Host, error) {
	if patch.Name == nil {
		return db.GetHost(ctx, eventID, userID)
	}

	result, err := db.q.ExecContext(ctx,
		`UPDATE hosts SET name = ? WHERE event_id = ? AND user_id = ?`,
		*patch.Name, eventID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating host (event=%s user=%s): %w",
			eventID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("host", eventID+"/"+userID)
	}

	return db.GetHost(ctx, eventID, userID)
}

// DeleteHost removes a single host row. It does NOT guard the ≥1-host
// invariant — that read-then-delete decision belongs to the service layer,
// inside a transaction.
func (db *DB) DeleteHost(ctx context.Context, eventID, userID string) error {
	result, err := db.q.ExecContext(ctx,
		`DELETE FROM hosts WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting host (event=%s user=%s): %w",
			eventID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("host", eventID+"/"+userID)
	}

	return nil
}
