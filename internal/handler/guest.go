package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/auth"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/service"
)

// GuestHandler owns the guest-list and host-roster routes under
// /api/events/{id}. All role transitions for a (user, event) pair flow
// through here and into GuestService.
type GuestHandler struct {
	guests *service.GuestService
}

func NewGuestHandler(guests *service.GuestService) *GuestHandler {
	return &GuestHandler{guests: guests}
}

type rsvpRequest struct {
	Status    model.RsvpStatus `json:"status"`
	Name      string           `json:"name"`
	PartySize int              `json:"partySize"`
}

type promoteRequest struct {
	Name string `json:"name"`
}

type demoteRequest struct {
	Status model.RsvpStatus `json:"status"`
	Name   string           `json:"name"`
}

// HandleGuestList returns an event's guest list with its head counts.
//
//	GET /api/events/{id}/guests
func (h *GuestHandler) HandleGuestList(w http.ResponseWriter, r *http.Request) {
	guests, counts, err := h.guests.GuestList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"guests": guests,
		"counts": counts,
	})
}

// HandleRsvp records or updates the caller's own RSVP. A host calling this
// gets a role_conflict response — hosts don't appear on the guest list.
//
//	PUT /api/events/{id}/guests
func (h *GuestHandler) HandleRsvp(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req rsvpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.guests.AddGuest(r.Context(), chi.URLParam(r, "id"), userID,
		req.Status, service.GuestAttrs{Name: req.Name, PartySize: req.PartySize})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}

// HandleUpdateGuest patches a guest's RSVP. Guests may edit their own;
// anyone else must be a host of the event.
//
//	PATCH /api/events/{id}/guests/{userID}
func (h *GuestHandler) HandleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if err := h.requireSelfOrHost(r, eventID, userID, actorID); err != nil {
		writeError(w, err)
		return
	}

	var patch model.RsvpPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.guests.UpdateGuest(r.Context(), eventID, userID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}

// HandleRemoveGuest deletes an RSVP. Guests may remove their own; hosts may
// remove anyone's.
//
//	DELETE /api/events/{id}/guests/{userID}
func (h *GuestHandler) HandleRemoveGuest(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if err := h.requireSelfOrHost(r, eventID, userID, actorID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.guests.RemoveGuest(r.Context(), eventID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePromote makes a user a host of the event. Hosts only. If the user
// had an RSVP it is removed in the same step and its display name carries
// over.
//
//	PUT /api/events/{id}/hosts/{userID}
func (h *GuestHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	if err := h.requireHost(r, eventID, actorID); err != nil {
		writeError(w, err)
		return
	}

	// Body is optional; an empty one means "no display name override".
	var req promoteRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	host, err := h.guests.PromoteToHost(r.Context(), eventID, chi.URLParam(r, "userID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, host)
}

// HandleDemote converts a host back into a guest. A host may demote
// themselves; co-hosts may demote each other. Demoting the only host fails
// with sole_host.
//
//	POST /api/events/{id}/hosts/{userID}/demote
func (h *GuestHandler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	if err := h.requireHost(r, eventID, actorID); err != nil {
		writeError(w, err)
		return
	}

	var req demoteRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	rsvp, err := h.guests.DemoteToGuest(r.Context(), eventID, chi.URLParam(r, "userID"), req.Status, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}

// HandleRemoveHost drops a user from the host roster. If they are the only
// host the request fails with sole_host unless ?deleteSoloHostedEvent=true
// is passed, in which case the whole event is deleted instead.
//
//	DELETE /api/events/{id}/hosts/{userID}?deleteSoloHostedEvent=true
func (h *GuestHandler) HandleRemoveHost(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	deleteSolo := r.URL.Query().Get("deleteSoloHostedEvent") == "true"

	if err := h.requireHost(r, eventID, actorID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.guests.RemoveHost(r.Context(), eventID, chi.URLParam(r, "userID"), deleteSolo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireHost checks that the caller hosts the event before a roster change.
func (h *GuestHandler) requireHost(r *http.Request, eventID, actorID string) error {
	isHost, err := h.guests.IsHost(r.Context(), eventID, actorID)
	if err != nil {
		return err
	}
	if !isHost {
		return apperror.Forbidden("only a host of this event may do that")
	}
	return nil
}

// requireSelfOrHost allows a guest to act on their own RSVP, or a host to
// act on anyone's.
func (h *GuestHandler) requireSelfOrHost(r *http.Request, eventID, userID, actorID string) error {
	if actorID == userID {
		return nil
	}
	return h.requireHost(r, eventID, actorID)
}
