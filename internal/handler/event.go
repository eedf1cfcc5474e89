package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/screenpatron/screen-patron/internal/auth"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/service"
	"github.com/screenpatron/screen-patron/internal/storage"
)

// EventHandler owns the /api/events endpoints for the events themselves.
// Guest-list and host-roster routes live in GuestHandler.
type EventHandler struct {
	events *service.EventService
	photos *storage.LocalStore
}

func NewEventHandler(events *service.EventService, photos *storage.LocalStore) *EventHandler {
	return &EventHandler{events: events, photos: photos}
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	TimeZone    string    `json:"timeZone"`
	DateStart   time.Time `json:"dateStart"`
	DateEnd     time.Time `json:"dateEnd"`
	Cost        int       `json:"cost"`
	Capacity    int       `json:"capacity"`
	HostName    string    `json:"hostName"` // display name for the creator's host entry
}

// HandleCreate creates an event with the caller as its first host.
//
//	POST /api/events
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), userID, service.EventInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		TimeZone:    req.TimeZone,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
		Cost:        req.Cost,
		Capacity:    req.Capacity,
	}, req.HostName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// HandleList returns upcoming events, paginated with ?limit= and ?offset=.
//
//	GET /api/events
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	events, err := h.events.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// HandleGet returns the full event page payload: the event plus its hosts,
// guest list, and head counts.
//
//	GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.events.GetDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleUpdate patches an event. Hosts only.
//
//	PATCH /api/events/{id}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var patch model.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), userID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleDelete removes an event, cascading its hosts and rsvps. Hosts only.
//
//	DELETE /api/events/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPhoto uploads the event still. Hosts only.
//
//	PUT /api/events/{id}/photo
func (h *EventHandler) HandleSetPhoto(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	prev := ""
	if current, err := h.events.Get(r.Context(), id); err == nil {
		prev = current.Photo
	}

	path, err := savePhoto(r, h.photos)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.SetPhoto(r.Context(), id, userID, path)
	if err != nil {
		h.photos.Delete(path)
		writeError(w, err)
		return
	}

	if prev != "" && prev != path {
		h.photos.Delete(prev)
	}
	writeJSON(w, http.StatusOK, event)
}
