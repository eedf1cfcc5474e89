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

// compile-time check that *DB implements repository.EventRepository
var _ repository.EventRepository = (*DB)(nil)

const eventColumns = `id, name, photo, description, date_start, date_end,
	time_zone, location, cost, capacity, created_at, updated_at`

// CreateEvent inserts a new event, filling in ID and timestamps. Optional
// dates are stored as NULL when unset (time.Time zero value).
//
// This only writes the events row. The service layer is responsible for
// creating the first host in the same transaction so the event is never
// visible without one.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	event.ID = xid.New().String()
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := db.q.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Name,
		event.Photo,
		event.Description,
		nullTime(event.DateStart),
		nullTime(event.DateEnd),
		event.TimeZone,
		event.Location,
		event.Cost,
		event.Capacity,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	return nil
}

// GetEventByID retrieves a single event by its ID.
func (db *DB) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	row := db.q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqlite: getting event %s: %w", id, err)
	}

	return event, nil
}

// ListEvents retrieves events, soonest first. Events without a start date
// sort after dated ones, newest created first among themselves.
func (db *DB) ListEvents(ctx context.Context, opts repository.ListOptions) ([]model.Event, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.q.QueryContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY date_start IS NULL, date_start ASC, created_at DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating events: %w", err)
	}

	return events, nil
}

// UpdateEvent applies a partial patch, same convention as UpdateUser.
// A date pointer to the zero time clears the column back to NULL.
func (db *DB) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)

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
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.DateStart != nil {
		appendSet("date_start", nullTime(*patch.DateStart))
	}
	if patch.DateEnd != nil {
		appendSet("date_end", nullTime(*patch.DateEnd))
	}
	if patch.TimeZone != nil {
		appendSet("time_zone", *patch.TimeZone)
	}
	if patch.Location != nil {
		appendSet("location", *patch.Location)
	}
	if patch.Cost != nil {
		appendSet("cost", *patch.Cost)
	}
	if patch.Capacity != nil {
		appendSet("capacity", *patch.Capacity)
	}

	if len(sets) == 0 {
		return db.GetEventByID(ctx, id)
	}

	appendSet("updated_at", time.Now())
	args = append(args, id)

	result, err := db.q.ExecContext(ctx,
		`UPDATE events SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("event", id)
	}

	return db.GetEventByID(ctx, id)
}

// DeleteEvent removes an event; its host and rsvp rows cascade.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("event", id)
	}

	return nil
}

// scanEvent reads one event row. Both sql.Row.Scan and sql.Rows.Scan fit the
// scan parameter, so the single helper serves lookups and lists.
func scanEvent(scan func(dest ...any) error) (*model.Event, error) {
	var (
		e         model.Event
		dateStart sql.NullTime
		dateEnd   sql.NullTime
	)

	err := scan(
		&e.ID,
		&e.Name,
		&e.Photo,
		&e.Description,
		&dateStart,
		&dateEnd,
		&e.TimeZone,
		&e.Location,
		&e.Cost,
		&e.Capacity,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.DateStart = fromNullTime(dateStart)
	e.DateEnd = fromNullTime(dateEnd)
	return &e, nil
}
