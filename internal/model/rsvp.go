package model

import "time"

// RsvpStatus is a guest's answer to an event invitation.
type RsvpStatus string

// The three possible RSVP answers. Stored verbatim in the database, so the
// values double as the wire format.
const (
	StatusGoing    RsvpStatus = "GOING"
	StatusMaybe    RsvpStatus = "MAYBE"
	StatusNotGoing RsvpStatus = "NOT_GOING"
)

// Valid reports whether s is one of the three known statuses.
func (s RsvpStatus) Valid() bool {
	switch s {
	case StatusGoing, StatusMaybe, StatusNotGoing:
		return true
	}
	return false
}

// Rsvp is a user's response to an event, keyed by the composite
// (EventID, UserID) — one response per user per event.
//
// Name is an optional display-name override for the guest list (same idea as
// Host.Name). PartySize is how many people the response covers, including
// the responder; it defaults to 1 and is never below 1.
type Rsvp struct {
	EventID   string     `json:"eventId"`
	UserID    string     `json:"userId"`
	Status    RsvpStatus `json:"status"`
	Name      string     `json:"name,omitempty"`
	PartySize int        `json:"partySize"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RsvpPatch is a partial update for an Rsvp row.
type RsvpPatch struct {
	Status    *RsvpStatus `json:"status,omitempty"`
	Name      *string     `json:"name,omitempty"`
	PartySize *int        `json:"partySize,omitempty"`
}

// GuestCount is the aggregate head count for an event's guest list,
// produced by service.CountGuests.
//
// TotalGuests counts the people expected to show up (going + maybe);
// TotalResponses additionally counts declines.
type GuestCount struct {
	Going          int `json:"going"`
	Maybe          int `json:"maybe"`
	NotGoing       int `json:"notGoing"`
	TotalGuests    int `json:"totalGuests"`
	TotalResponses int `json:"totalResponses"`
}
