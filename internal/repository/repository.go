// Package repository defines the data-access interfaces the service layer
// depends on. The concrete implementation lives in repository/sqlite; tests
// may substitute in-memory fakes.
//
// Every lookup returns apperror.ErrNotFound (wrapped) when the row does not
// exist, and every create returns apperror.ErrConflict on a uniqueness
// violation (duplicate email, duplicate composite host/rsvp identity). The
// service layer branches on those kinds with errors.Is.
package repository

import (
	"context"

	"github.com/screenpatron/screen-patron/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// RsvpFilter restricts which rows within an event's guest list a bulk
// operation touches. A nil Status means "all statuses".
type RsvpFilter struct {
	Status *model.RsvpStatus
}

type UserRepository interface {
	// CreateUser inserts a new user, filling in ID and timestamps.
	// Returns a Conflict error if the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser applies a partial patch and returns the updated row.
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	// DeleteUser removes the user; their host and rsvp rows cascade.
	// Callers that care about the ≥1-host invariant must clean up hosted
	// events first (see service.GuestService.RemoveHostAllEvents).
	DeleteUser(ctx context.Context, id string) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	// ListEvents returns events ordered soonest-first (events without a start
	// date sort last, newest first among themselves).
	ListEvents(ctx context.Context, opts ListOptions) ([]model.Event, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error)
	// DeleteEvent removes the event and cascades its host and rsvp rows.
	DeleteEvent(ctx context.Context, id string) error
}

type HostRepository interface {
	CreateHost(ctx context.Context, host *model.Host) error
	GetHost(ctx context.Context, eventID, userID string) (*model.Host, error)
	ListHostsByEvent(ctx context.Context, eventID string) ([]model.Host, error)
	ListHostsByUser(ctx context.Context, userID string) ([]model.Host, error)
	CountHosts(ctx context.Context, eventID string) (int, error)
	// ListSoloHostedEvents returns the IDs of every event where this user is
	// the only host. Those events cannot survive the user's removal.
	ListSoloHostedEvents(ctx context.Context, userID string) ([]string, error)
	UpdateHost(ctx context.Context, eventID, userID string, patch model.HostPatch) (*model.Host, error)
	DeleteHost(ctx context.Context, eventID, userID string) error
}

type RsvpRepository interface {
	CreateRsvp(ctx context.Context, rsvp *model.Rsvp) error
	GetRsvp(ctx context.Context, eventID, userID string) (*model.Rsvp, error)
	ListRsvpsByEvent(ctx context.Context, eventID string, filter RsvpFilter) ([]model.Rsvp, error)
	UpdateRsvp(ctx context.Context, eventID, userID string, patch model.RsvpPatch) (*model.Rsvp, error)
	// UpdateRsvps patches every rsvp of the event matching the filter and
	// reports how many rows changed.
	UpdateRsvps(ctx context.Context, eventID string, filter RsvpFilter, patch model.RsvpPatch) (int64, error)
	DeleteRsvp(ctx context.Context, eventID, userID string) error
	DeleteRsvps(ctx context.Context, eventID string, filter RsvpFilter) (int64, error)
}

// Store bundles all entity repositories with a transaction runner.
//
// InTx runs fn against a Store whose operations all share one database
// transaction: if fn returns an error the transaction rolls back and nothing
// fn did is visible to anyone. The multi-step role transitions (promote,
// demote, remove-host) depend on this — a concurrent reader must never
// observe an event between "rsvp deleted" and "host created", and the
// sole-host count check must hold at commit time, not just when it was read.
//
// Nested InTx calls join the already-open transaction.
type Store interface {
	UserRepository
	EventRepository
	HostRepository
	RsvpRepository

	InTx(ctx context.Context, fn func(tx Store) error) error
}
