// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account: someone who can host screenings,
// RSVP to them, or both (though never both for the same event).
//
// WHY plain strings for optional profile fields?
// Name, Photo, Bio and the social links are all optional. We use the empty
// string as "unset" rather than *string pointers — simpler to work with and
// safe to render. The repository maps SQL NULLs to "" at the scan boundary,
// so nothing above the data layer ever sees a null.
//
// Photo is an opaque path into the image store (see internal/storage);
// the domain logic never interprets it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // unique, required
	Name         string    `json:"name,omitempty"`
	Photo        string    `json:"photo,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Instagram    string    `json:"instagram,omitempty"`
	Twitter      string    `json:"twitter,omitempty"`
	Website      string    `json:"website,omitempty"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch is a partial update for a User. Only the mutable profile fields
// appear here; ID, Email and timestamps are managed elsewhere.
//
// Each field is a pointer so we can distinguish:
//   - nil               → leave the column unchanged
//   - pointer to ""     → explicitly clear the field
//   - pointer to value  → set the field
//
// This three-way distinction is what lets a PUT request clear a bio without
// also blanking every field it didn't mention.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	Photo     *string `json:"photo,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	Website   *string `json:"website,omitempty"`
}
