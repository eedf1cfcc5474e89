package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

func TestCreateEvent(t *testing.T) {
	db := newTestDB(t)

	start := time.Date(2026, 10, 3, 19, 30, 0, 0, time.UTC)
	event := &model.Event{
		Name:      "Metropolis with live score",
		DateStart: start,
		TimeZone:  "America/New_York",
		Cost:      1500,
		Capacity:  80,
	}
	if err := db.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if event.ID == "" {
		t.Error("CreateEvent() did not set event.ID")
	}

	found, err := db.GetEventByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetEventByID() error = %v", err)
	}
	if !found.DateStart.Equal(start) {
		t.Errorf("DateStart = %v, want %v", found.DateStart, start)
	}
	if found.Cost != 1500 {
		t.Errorf("Cost = %d, want 1500", found.Cost)
	}
}

func TestCreateEvent_UnsetDatesComeBackZero(t *testing.T) {
	db := newTestDB(t)
	event := createTestEvent(t, db, "draft")

	found, err := db.GetEventByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetEventByID() error = %v", err)
	}
	// Unset dates are NULL in the column and zero values in the struct;
	// nothing above the repository ever sees a null.
	if !found.DateStart.IsZero() {
		t.Errorf("DateStart = %v, want zero", found.DateStart)
	}
	if !found.DateEnd.IsZero() {
		t.Errorf("DateEnd = %v, want zero", found.DateEnd)
	}
}

func TestGetEventByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetEventByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetEventByID() error = %v, want ErrNotFound", err)
	}
}

func TestListEvents_SoonestFirstUndatedLast(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	later := &model.Event{Name: "later", DateStart: time.Now().Add(48 * time.Hour)}
	sooner := &model.Event{Name: "sooner", DateStart: time.Now().Add(24 * time.Hour)}
	undated := &model.Event{Name: "undated"}
	for _, e := range []*model.Event{later, sooner, undated} {
		if err := db.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
	}

	events, err := db.ListEvents(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ListEvents() returned %d events, want 3", len(events))
	}

	if events[0].Name != "sooner" || events[1].Name != "later" || events[2].Name != "undated" {
		t.Errorf("order = [%s %s %s], want [sooner later undated]",
			events[0].Name, events[1].Name, events[2].Name)
	}
}

func TestListEvents_Pagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestEvent(t, db, "screening")
	}

	page1, err := db.ListEvents(context.Background(), repository.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents() page 1 error = %v", err)
	}
	if len(page1) != 2 {
		t.Errorf("page 1: got %d, want 2", len(page1))
	}

	page3, err := db.ListEvents(context.Background(), repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListEvents() page 3 error = %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page 3: got %d, want 1", len(page3))
	}
}

func TestUpdateEvent_PatchAndClearDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	event := &model.Event{Name: "dated", DateStart: time.Now().Add(time.Hour)}
	if err := db.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	name := "renamed"
	zero := time.Time{}
	updated, err := db.UpdateEvent(ctx, event.ID, model.EventPatch{
		Name:      &name,
		DateStart: &zero, // pointer to zero clears the column back to NULL
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	if updated.Name != "renamed" {
		t.Errorf("Name = %q, want %q", updated.Name, "renamed")
	}
	if !updated.DateStart.IsZero() {
		t.Errorf("DateStart = %v, want cleared", updated.DateStart)
	}
}

func TestUpdateEvent_NotFound(t *testing.T) {
	db := newTestDB(t)

	name := "ghost"
	_, err := db.UpdateEvent(context.Background(), "nonexistent-id", model.EventPatch{Name: &name})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateEvent() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteEvent_CascadesHostsAndRsvps(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	host := createTestUser(t, db, "host")
	guest := createTestUser(t, db, "guest")
	event := createTestEvent(t, db, "condemned")
	createTestHost(t, db, event.ID, host.ID)
	createTestRsvp(t, db, event.ID, guest.ID, model.StatusMaybe, 1)

	if err := db.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	if _, err := db.GetHost(ctx, event.ID, host.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("host row should cascade with the event; got %v", err)
	}
	if _, err := db.GetRsvp(ctx, event.ID, guest.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("rsvp row should cascade with the event; got %v", err)
	}
	// The users themselves are unaffected.
	if _, err := db.GetUserByID(ctx, guest.ID); err != nil {
		t.Errorf("guest user should survive event deletion: %v", err)
	}
}
