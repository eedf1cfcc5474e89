package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
)

func TestEventCreate_CreatorBecomesFirstHost(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	creator := seedUser(t, store, "creator")

	event, err := svc.Create(context.Background(), creator.ID, EventInput{
		Name: "Nosferatu centennial",
	}, "Count Orlok Fan Club")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The event is born hosted — no window where it exists host-less.
	host, err := store.GetHost(context.Background(), event.ID, creator.ID)
	if err != nil {
		t.Fatalf("creator has no host row: %v", err)
	}
	if host.Name != "Count Orlok Fan Club" {
		t.Errorf("host Name = %q, want the supplied display name", host.Name)
	}

	count, err := store.CountHosts(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("CountHosts() error = %v", err)
	}
	if count != 1 {
		t.Errorf("host count = %d, want 1", count)
	}
}

func TestEventCreate_UnknownCreator(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())

	_, err := svc.Create(context.Background(), "no-such-user", EventInput{Name: "orphan"}, "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}

	// The transaction rolled back: no event row either.
	events, listErr := svc.List(context.Background(), 10, 0)
	if listErr != nil {
		t.Fatalf("List() error = %v", listErr)
	}
	if len(events) != 0 {
		t.Errorf("found %d events after failed create, want 0", len(events))
	}
}

func TestEventCreate_Validation(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	creator := seedUser(t, store, "creator")

	start := time.Now().Add(2 * time.Hour)
	tests := []struct {
		name  string
		input EventInput
	}{
		{"negative cost", EventInput{Cost: -100}},
		{"negative capacity", EventInput{Capacity: -1}},
		{"bad time zone", EventInput{TimeZone: "Mars/Olympus_Mons"}},
		{"ends before it starts", EventInput{DateStart: start, DateEnd: start.Add(-time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), creator.ID, tt.input, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestEventGetDetail(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	host := seedUser(t, store, "host")
	event := seedEvent(t, store, "full page", host.ID)
	seedRsvp(t, store, event.ID, seedUser(t, store, "guest").ID, model.StatusGoing, "", 2)

	detail, err := svc.GetDetail(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(detail.Hosts) != 1 {
		t.Errorf("Hosts = %d, want 1", len(detail.Hosts))
	}
	if len(detail.Guests) != 1 {
		t.Errorf("Guests = %d, want 1", len(detail.Guests))
	}
	if detail.Counts.Going != 2 {
		t.Errorf("Counts.Going = %d, want 2", detail.Counts.Going)
	}
}

func TestEventUpdate_HostOnly(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	host := seedUser(t, store, "host")
	stranger := seedUser(t, store, "stranger")
	event := seedEvent(t, store, "guarded", host.ID)

	name := "hijacked"
	_, err := svc.Update(context.Background(), event.ID, stranger.ID, model.EventPatch{Name: &name})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by non-host error = %v, want ErrForbidden", err)
	}

	name = "renamed"
	updated, err := svc.Update(context.Background(), event.ID, host.ID, model.EventPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() by host error = %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("Name = %q, want %q", updated.Name, "renamed")
	}
}

func TestEventUpdate_MissingEventIsNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	user := seedUser(t, store, "someone")

	// A missing event must read as 404, not as a permissions problem.
	name := "x"
	_, err := svc.Update(context.Background(), "no-such-event", user.ID, model.EventPatch{Name: &name})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestEventDelete(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store, testLogger())
	host := seedUser(t, store, "host")
	event := seedEvent(t, store, "doomed", host.ID)

	if err := svc.Delete(context.Background(), event.ID, host.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), event.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
