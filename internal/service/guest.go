// Package service contains the business logic layer of the application.
//
// The layering follows the usual shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces invariants, orchestrates
//	Repository (data)  → reads/writes SQLite
//
// Services receive repository.Store (an interface), never the concrete
// sqlite.DB, so tests can substitute a fake and main.go decides the wiring.
//
// This file holds the host/guest role model — the invariant-bearing core of
// the app. Two rules hold at all times:
//
//	P1: every event has at least one host
//	P2: for any (event, user) pair, at most one of host/rsvp exists
//
// The repository's composite keys enforce "at most one of each"; everything
// else here is read-then-write and therefore runs inside store.InTx so a
// concurrent caller can never observe (or create) a half-applied transition.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// msgHostCannotRsvp is shown to a host who tries to join their own guest
// list. It is an expected user action, not a pipeline failure.
const msgHostCannotRsvp = "A host cannot RSVP as a guest."

// GuestService owns every transition between the NONE / HOST / GUEST states
// of a (user, event) pair.
type GuestService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewGuestService creates a GuestService.
func NewGuestService(store repository.Store, logger *slog.Logger) *GuestService {
	return &GuestService{
		store:  store,
		logger: logger,
	}
}

// GuestAttrs carries the optional fields of an RSVP. A zero value means
// "not supplied": the name stays empty (the profile name is shown instead)
// and the party size defaults to 1.
type GuestAttrs struct {
	Name      string
	PartySize int
}

// AddGuest records or updates a user's RSVP for an event (NONE→GUEST or
// GUEST→GUEST).
//
// If the user currently hosts the event, this returns a RoleConflict error
// carrying a user-facing message and writes nothing — hosts may not also
// appear on the guest list.
//
// Upsert semantics: the existing rsvp (if any) is read and then either
// created or patched, both inside one transaction. Not every store has an
// atomic upsert primitive; the transaction boundary is the guarantee that
// matters.
func (s *GuestService) AddGuest(ctx context.Context, eventID, userID string, status model.RsvpStatus, attrs GuestAttrs) (*model.Rsvp, error) {
	if err := requireIDs(eventID, userID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of GOING, MAYBE, NOT_GOING; got %q", status))
	}
	if attrs.PartySize < 0 {
		return nil, apperror.ValidationFailed("partySize", "party size cannot be negative")
	}

	var out *model.Rsvp
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetEventByID(ctx, eventID); err != nil {
			return err
		}
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}

		// P2: a host may not also hold an rsvp.
		_, err := tx.GetHost(ctx, eventID, userID)
		if err == nil {
			return apperror.RoleConflict(msgHostCannotRsvp)
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}

		existing, err := tx.GetRsvp(ctx, eventID, userID)
		switch {
		case err == nil:
			patch := model.RsvpPatch{Status: &status}
			if attrs.Name != "" {
				patch.Name = &attrs.Name
			}
			if attrs.PartySize > 0 {
				patch.PartySize = &attrs.PartySize
			}
			out, err = tx.UpdateRsvp(ctx, existing.EventID, existing.UserID, patch)
			return err

		case errors.Is(err, apperror.ErrNotFound):
			rsvp := &model.Rsvp{
				EventID:   eventID,
				UserID:    userID,
				Status:    status,
				Name:      attrs.Name,
				PartySize: attrs.PartySize, // repository defaults 0 to 1
			}
			if err := tx.CreateRsvp(ctx, rsvp); err != nil {
				return err
			}
			out = rsvp
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("guest rsvp recorded",
		slog.String("eventID", eventID),
		slog.String("userID", userID),
		slog.String("status", string(out.Status)),
	)
	return out, nil
}

// PromoteToHost makes a user a host of an event (NONE→HOST or GUEST→HOST).
//
// If the user has an RSVP it is deleted and its display name carries over to
// the new host row, unless an explicit name is supplied. Both writes share
// one transaction: no reader ever sees the pair with neither role.
//
// Adding a host cannot violate P1, so there is no count check here.
func (s *GuestService) PromoteToHost(ctx context.Context, eventID, userID, name string) (*model.Host, error) {
	if err := requireIDs(eventID, userID); err != nil {
		return nil, err
	}

	var out *model.Host
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetEventByID(ctx, eventID); err != nil {
			return err
		}
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}

		hostName := strings.TrimSpace(name)

		rsvp, err := tx.GetRsvp(ctx, eventID, userID)
		switch {
		case err == nil:
			if hostName == "" {
				hostName = rsvp.Name
			}
			if err := tx.DeleteRsvp(ctx, eventID, userID); err != nil {
				return err
			}
		case errors.Is(err, apperror.ErrNotFound):
			// NONE→HOST: nothing to carry over.
		default:
			return err
		}

		host := &model.Host{EventID: eventID, UserID: userID, Name: hostName}
		if err := tx.CreateHost(ctx, host); err != nil {
			return err
		}
		out = host
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user promoted to host",
		slog.String("eventID", eventID),
		slog.String("userID", userID),
	)
	return out, nil
}

// DemoteToGuest converts a host into a guest (HOST→GUEST). An empty status
// defaults to GOING. The host's display name is the fallback for the new
// rsvp's name.
//
// The sole-host check, the host deletion, and the rsvp creation are one
// transaction: if the user is the last host, the whole demotion fails with
// SoleHost and no rsvp is created — there is never a moment where the event
// has zero hosts.
func (s *GuestService) DemoteToGuest(ctx context.Context, eventID, userID string, status model.RsvpStatus, name string) (*model.Rsvp, error) {
	if err := requireIDs(eventID, userID); err != nil {
		return nil, err
	}
	if status == "" {
		status = model.StatusGoing
	}
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of GOING, MAYBE, NOT_GOING; got %q", status))
	}

	var out *model.Rsvp
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		host, err := tx.GetHost(ctx, eventID, userID)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotHost(eventID, userID)
		}
		if err != nil {
			return err
		}

		count, err := tx.CountHosts(ctx, eventID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return apperror.SoleHost(fmt.Sprintf(
				"cannot demote the only host of event %s", eventID))
		}

		if err := tx.DeleteHost(ctx, eventID, userID); err != nil {
			return err
		}

		guestName := strings.TrimSpace(name)
		if guestName == "" {
			guestName = host.Name
		}
		rsvp := &model.Rsvp{
			EventID: eventID,
			UserID:  userID,
			Status:  status,
			Name:    guestName,
		}
		if err := tx.CreateRsvp(ctx, rsvp); err != nil {
			return err
		}
		out = rsvp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("host demoted to guest",
		slog.String("eventID", eventID),
		slog.String("userID", userID),
	)
	return out, nil
}

// RemoveHost removes a user as host of an event (HOST→NONE).
//
// If the user is the only host, the event would be left orphaned, which P1
// forbids. With deleteSoloHostedEvent false the call fails with SoleHost and
// nothing changes; with it true the whole event is deleted instead,
// cascading its hosts and rsvps.
func (s *GuestService) RemoveHost(ctx context.Context, eventID, userID string, deleteSoloHostedEvent bool) error {
	if err := requireIDs(eventID, userID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		return removeHostTx(ctx, tx, eventID, userID, deleteSoloHostedEvent)
	})
	if err != nil {
		return err
	}

	s.logger.Info("host removed",
		slog.String("eventID", eventID),
		slog.String("userID", userID),
		slog.Bool("deleteSoloHostedEvent", deleteSoloHostedEvent),
	)
	return nil
}

// removeHostTx is RemoveHost's transactional body, shared with the
// account-deletion path in UserService.
//
// The count is read inside the same transaction that deletes, so two
// concurrent removals of different hosts on a two-host event cannot both
// pass the check and strand the event.
func removeHostTx(ctx context.Context, tx repository.Store, eventID, userID string, deleteSoloHostedEvent bool) error {
	_, err := tx.GetHost(ctx, eventID, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotHost(eventID, userID)
	}
	if err != nil {
		return err
	}

	count, err := tx.CountHosts(ctx, eventID)
	if err != nil {
		return err
	}

	if count <= 1 {
		if !deleteSoloHostedEvent {
			return apperror.SoleHost(fmt.Sprintf(
				"removing the only host would leave event %s without one; "+
					"request event deletion to proceed", eventID))
		}
		// Delete the whole event; hosts and rsvps cascade.
		return tx.DeleteEvent(ctx, eventID)
	}

	return tx.DeleteHost(ctx, eventID, userID)
}

// RemoveHostAllEvents removes a user as host from every event they host,
// applied when an account is deleted.
//
// Events where the user is one of several hosts just lose that host row.
// Events where they are the only host cannot survive: if any exist and
// deleteSoloHostedEvent is false, the whole batch fails with SoleHost and
// nothing is changed; if true, those events are deleted entirely.
//
// The batch runs as one transaction, so a failure midway never leaves the
// user removed from some events but not others.
func (s *GuestService) RemoveHostAllEvents(ctx context.Context, userID string, deleteSoloHostedEvent bool) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		return removeHostAllEventsTx(ctx, tx, userID, deleteSoloHostedEvent)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user removed as host from all events",
		slog.String("userID", userID),
		slog.Bool("deleteSoloHostedEvent", deleteSoloHostedEvent),
	)
	return nil
}

// removeHostAllEventsTx is RemoveHostAllEvents' transactional body, shared
// with UserService.Delete so account deletion and host cleanup commit
// together.
func removeHostAllEventsTx(ctx context.Context, tx repository.Store, userID string, deleteSoloHostedEvent bool) error {
	solo, err := tx.ListSoloHostedEvents(ctx, userID)
	if err != nil {
		return err
	}

	if len(solo) > 0 && !deleteSoloHostedEvent {
		return apperror.SoleHost(fmt.Sprintf(
			"user %s is the only host of %d event(s); "+
				"request event deletion to proceed", userID, len(solo)))
	}

	for _, eventID := range solo {
		if err := tx.DeleteEvent(ctx, eventID); err != nil {
			return err
		}
	}

	// Remaining host rows are on multi-host events; drop just the row.
	hosts, err := tx.ListHostsByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, h := range hosts {
		if err := tx.DeleteHost(ctx, h.EventID, h.UserID); err != nil {
			return err
		}
	}

	return nil
}

// RemoveGuest deletes a user's RSVP (GUEST→NONE). Returns NotFound if there
// is none.
func (s *GuestService) RemoveGuest(ctx context.Context, eventID, userID string) error {
	if err := requireIDs(eventID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteRsvp(ctx, eventID, userID); err != nil {
		return err
	}

	s.logger.Info("guest removed",
		slog.String("eventID", eventID),
		slog.String("userID", userID),
	)
	return nil
}

// UpdateGuest patches a user's RSVP (GUEST→GUEST status/name/party changes).
func (s *GuestService) UpdateGuest(ctx context.Context, eventID, userID string, patch model.RsvpPatch) (*model.Rsvp, error) {
	if err := requireIDs(eventID, userID); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of GOING, MAYBE, NOT_GOING; got %q", *patch.Status))
	}
	if patch.PartySize != nil && *patch.PartySize < 1 {
		return nil, apperror.ValidationFailed("partySize", "party size must be at least 1")
	}

	return s.store.UpdateRsvp(ctx, eventID, userID, patch)
}

// IsHost reports whether the user currently hosts the event.
func (s *GuestService) IsHost(ctx context.Context, eventID, userID string) (bool, error) {
	if eventID == "" || userID == "" {
		return false, nil
	}
	_, err := s.store.GetHost(ctx, eventID, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GuestList returns an event's guest list along with its tally.
func (s *GuestService) GuestList(ctx context.Context, eventID string) ([]model.Rsvp, model.GuestCount, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, model.GuestCount{}, apperror.ValidationFailed("eventId", "event ID is required")
	}
	if _, err := s.store.GetEventByID(ctx, eventID); err != nil {
		return nil, model.GuestCount{}, err
	}

	rsvps, err := s.store.ListRsvpsByEvent(ctx, eventID, repository.RsvpFilter{})
	if err != nil {
		return nil, model.GuestCount{}, err
	}

	return rsvps, CountGuests(rsvps), nil
}

// CountGuests folds a guest list into per-status head counts.
//
// It is pure and order-independent: integer addition commutes, so any
// permutation of rsvps yields the same tally. A PartySize below 1 counts as
// 1 (the responder themselves); unknown statuses are ignored rather than
// guessed at.
func CountGuests(rsvps []model.Rsvp) model.GuestCount {
	var c model.GuestCount
	for _, r := range rsvps {
		size := r.PartySize
		if size < 1 {
			size = 1
		}
		switch r.Status {
		case model.StatusGoing:
			c.Going += size
		case model.StatusMaybe:
			c.Maybe += size
		case model.StatusNotGoing:
			c.NotGoing += size
		}
	}
	c.TotalGuests = c.Going + c.Maybe
	c.TotalResponses = c.TotalGuests + c.NotGoing
	return c
}

// requireIDs validates the composite identity every role operation needs.
// Missing identifiers are programmer errors on the calling side.
func requireIDs(eventID, userID string) error {
	if strings.TrimSpace(eventID) == "" {
		return apperror.ValidationFailed("eventId", "event ID is required")
	}
	if strings.TrimSpace(userID) == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}
	return nil
}
