package model

import "time"

// Host links a User to an Event they manage.
//
// The identity is the composite (EventID, UserID) — a user hosts a given
// event at most once, enforced by the composite primary key. Host is its own
// entity rather than a join table because it carries a per-event attribute:
// an optional display Name shown on the event page, independent of the
// user's profile name (e.g. "Film Society" instead of "Dana").
//
// A user is either a host or a guest of an event, never both. The service
// layer enforces that exclusivity; the tables alone cannot.
type Host struct {
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HostPatch is a partial update for a Host row.
type HostPatch struct {
	Name *string `json:"name,omitempty"`
}
