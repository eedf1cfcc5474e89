package model

import "time"

// Event represents a film screening.
//
// Every field except ID and the timestamps is optional — a draft event can be
// created with nothing but a host and filled in later. Optional dates use the
// time.Time zero value as "not set"; the repository stores them as NULL.
//
// Cost is in cents and Capacity is a head count; both are non-negative, with
// zero meaning "free" and "no limit" respectively.
//
// INVARIANT: an event always has at least one host. The event is created
// together with its first Host row in one transaction, and the host-removal
// operations in the service layer refuse to delete the last one (or delete
// the whole event with it).
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Photo       string    `json:"photo,omitempty"`
	Description string    `json:"description,omitempty"`
	DateStart   time.Time `json:"dateStart,omitzero"`
	DateEnd     time.Time `json:"dateEnd,omitzero"`
	TimeZone    string    `json:"timeZone,omitempty"` // IANA name, e.g. "America/New_York"
	Location    string    `json:"location,omitempty"`
	Cost        int       `json:"cost"`     // cents, >= 0
	Capacity    int       `json:"capacity"` // seats, >= 0, 0 = unlimited
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EventPatch is a partial update for an Event. Same pointer convention as
// UserPatch: nil leaves the column alone, a pointer to the zero value clears it.
type EventPatch struct {
	Name        *string    `json:"name,omitempty"`
	Photo       *string    `json:"photo,omitempty"`
	Description *string    `json:"description,omitempty"`
	DateStart   *time.Time `json:"dateStart,omitempty"`
	DateEnd     *time.Time `json:"dateEnd,omitempty"`
	TimeZone    *string    `json:"timeZone,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Cost        *int       `json:"cost,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
}
