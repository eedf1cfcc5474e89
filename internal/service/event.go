package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// Validation constants for events.
const (
	MaxEventNameLength    = 100
	MaxDescriptionLength  = 10000
	MaxLocationLength     = 300
	DefaultEventListLimit = 20
	MaxEventListLimit     = 100
)

// EventService handles business logic for screening events.
type EventService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewEventService creates an EventService.
func NewEventService(store repository.Store, logger *slog.Logger) *EventService {
	return &EventService{
		store:  store,
		logger: logger,
	}
}

// EventInput carries the caller-supplied fields for creating an event.
// Everything is optional — a bare draft is a valid event.
type EventInput struct {
	Name        string
	Description string
	Location    string
	TimeZone    string
	DateStart   time.Time
	DateEnd     time.Time
	Cost        int
	Capacity    int
}

// EventDetail bundles what the event page needs: the event, its hosts, its
// guest list, and the tally.
type EventDetail struct {
	Event  model.Event      `json:"event"`
	Hosts  []model.Host     `json:"hosts"`
	Guests []model.Rsvp     `json:"guests"`
	Counts model.GuestCount `json:"counts"`
}

// Create validates and saves a new event. The creator becomes its first
// host, written in the same transaction as the event row, so the ≥1-host
// invariant holds from the moment the event exists.
//
// hostName optionally overrides the display name on that first host row.
func (s *EventService) Create(ctx context.Context, creatorID string, in EventInput, hostName string) (*model.Event, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperror.ValidationFailed("creatorId", "creator user ID is required")
	}
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	event := &model.Event{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		TimeZone:    strings.TrimSpace(in.TimeZone),
		DateStart:   in.DateStart,
		DateEnd:     in.DateEnd,
		Cost:        in.Cost,
		Capacity:    in.Capacity,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUserByID(ctx, creatorID); err != nil {
			return err
		}
		if err := tx.CreateEvent(ctx, event); err != nil {
			return err
		}
		host := &model.Host{
			EventID: event.ID,
			UserID:  creatorID,
			Name:    strings.TrimSpace(hostName),
		}
		return tx.CreateHost(ctx, host)
	})
	if err != nil {
		s.logger.Error("failed to create event",
			slog.String("creatorID", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("creatorID", creatorID),
	)
	return event, nil
}

// Get retrieves a single event.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event ID is required")
	}
	return s.store.GetEventByID(ctx, id)
}

// GetDetail retrieves an event together with its hosts, guests, and tally.
func (s *EventService) GetDetail(ctx context.Context, id string) (*EventDetail, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	hosts, err := s.store.ListHostsByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	guests, err := s.store.ListRsvpsByEvent(ctx, id, repository.RsvpFilter{})
	if err != nil {
		return nil, err
	}

	return &EventDetail{
		Event:  *event,
		Hosts:  hosts,
		Guests: guests,
		Counts: CountGuests(guests),
	}, nil
}

// List retrieves events with pagination, soonest first.
func (s *EventService) List(ctx context.Context, limit, offset int) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultEventListLimit
	}
	if limit > MaxEventListLimit {
		limit = MaxEventListLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.store.ListEvents(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Update patches an event. Only hosts may edit, so actorID is checked
// against the host table first.
func (s *EventService) Update(ctx context.Context, id, actorID string, patch model.EventPatch) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event ID is required")
	}
	if err := validateEventPatch(patch); err != nil {
		return nil, err
	}
	if err := s.requireHost(ctx, id, actorID); err != nil {
		return nil, err
	}

	event, err := s.store.UpdateEvent(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("event updated", slog.String("id", id), slog.String("actorID", actorID))
	return event, nil
}

// Delete removes an event entirely, cascading hosts and rsvps. Host only.
func (s *EventService) Delete(ctx context.Context, id, actorID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "event ID is required")
	}
	if err := s.requireHost(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("event deleted", slog.String("id", id), slog.String("actorID", actorID))
	return nil
}

// SetPhoto stores the image path on the event. Host only. The path is
// opaque here — internal/storage owns the actual bytes.
func (s *EventService) SetPhoto(ctx context.Context, id, actorID, path string) (*model.Event, error) {
	return s.Update(ctx, id, actorID, model.EventPatch{Photo: &path})
}

// requireHost returns Forbidden unless actorID hosts the event.
func (s *EventService) requireHost(ctx context.Context, eventID, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return apperror.Forbidden("only a host of this event may do that")
	}
	_, err := s.store.GetHost(ctx, eventID, actorID)
	if err == nil {
		return nil
	}
	// Missing host row means "not yours", not "nothing here" — but a missing
	// event should still read as NotFound.
	if _, evErr := s.store.GetEventByID(ctx, eventID); evErr != nil {
		return evErr
	}
	return apperror.Forbidden("only a host of this event may do that")
}

func validateEventInput(in EventInput) error {
	if len(in.Name) > MaxEventNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("event name must be %d characters or less", MaxEventNameLength))
	}
	if len(in.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if len(in.Location) > MaxLocationLength {
		return apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}
	if in.Cost < 0 {
		return apperror.ValidationFailed("cost", "cost cannot be negative")
	}
	if in.Capacity < 0 {
		return apperror.ValidationFailed("capacity", "capacity cannot be negative")
	}
	if in.TimeZone != "" {
		if _, err := time.LoadLocation(in.TimeZone); err != nil {
			return apperror.ValidationFailed("timeZone",
				fmt.Sprintf("unknown time zone %q", in.TimeZone))
		}
	}
	if !in.DateStart.IsZero() && !in.DateEnd.IsZero() && in.DateEnd.Before(in.DateStart) {
		return apperror.ValidationFailed("dateEnd", "event cannot end before it starts")
	}
	return nil
}

func validateEventPatch(patch model.EventPatch) error {
	if patch.Name != nil && len(*patch.Name) > MaxEventNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("event name must be %d characters or less", MaxEventNameLength))
	}
	if patch.Description != nil && len(*patch.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if patch.Location != nil && len(*patch.Location) > MaxLocationLength {
		return apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}
	if patch.Cost != nil && *patch.Cost < 0 {
		return apperror.ValidationFailed("cost", "cost cannot be negative")
	}
	if patch.Capacity != nil && *patch.Capacity < 0 {
		return apperror.ValidationFailed("capacity", "capacity cannot be negative")
	}
	if patch.TimeZone != nil && *patch.TimeZone != "" {
		if _, err := time.LoadLocation(*patch.TimeZone); err != nil {
			return apperror.ValidationFailed("timeZone",
				fmt.Sprintf("unknown time zone %q", *patch.TimeZone))
		}
	}
	return nil
}
