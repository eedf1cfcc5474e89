package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/repository"
)

// newTestDB opens a fresh in-memory database per test: fast, isolated, and
// destroyed when the connection closes. t.Cleanup handles the close even in
// subtests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testUserSeq int

// createTestUser inserts a user with a unique email and fails the test on
// error.
func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	testUserSeq++
	user := &model.User{
		Email: fmt.Sprintf("%s%d@example.com", name, testUserSeq),
		Name:  name,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestEvent inserts a bare event.
func createTestEvent(t *testing.T, db *DB, name string) *model.Event {
	t.Helper()
	event := &model.Event{Name: name}
	if err := db.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return event
}

// createTestHost links a user to an event as host.
func createTestHost(t *testing.T, db *DB, eventID, userID string) *model.Host {
	t.Helper()
	host := &model.Host{EventID: eventID, UserID: userID}
	if err := db.CreateHost(context.Background(), host); err != nil {
		t.Fatalf("failed to create test host: %v", err)
	}
	return host
}

// createTestRsvp links a user to an event as guest.
func createTestRsvp(t *testing.T, db *DB, eventID, userID string, status model.RsvpStatus, partySize int) *model.Rsvp {
	t.Helper()
	rsvp := &model.Rsvp{EventID: eventID, UserID: userID, Status: status, PartySize: partySize}
	if err := db.CreateRsvp(context.Background(), rsvp); err != nil {
		t.Fatalf("failed to create test rsvp: %v", err)
	}
	return rsvp
}

func TestInTx_CommitsOnNil(t *testing.T) {
	db := newTestDB(t)

	err := db.InTx(context.Background(), func(tx repository.Store) error {
		user := &model.User{Email: "tx@example.com"}
		return tx.CreateUser(context.Background(), user)
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}

	if _, err := db.GetUserByEmail(context.Background(), "tx@example.com"); err != nil {
		t.Errorf("user written in committed transaction not found: %v", err)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.InTx(context.Background(), func(tx repository.Store) error {
		user := &model.User{Email: "rollback@example.com"}
		if err := tx.CreateUser(context.Background(), user); err != nil {
			return err
		}
		return boom
	})

	// The callback error must come back unchanged so callers can errors.Is
	// on domain errors.
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	if _, err := db.GetUserByEmail(context.Background(), "rollback@example.com"); err == nil {
		t.Error("user written in rolled-back transaction should not exist")
	}
}

func TestInTx_NestedJoinsOpenTransaction(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	// The inner InTx must not try to BEGIN again, and the outer rollback
	// must undo the inner write too.
	err := db.InTx(context.Background(), func(tx repository.Store) error {
		if err := tx.InTx(context.Background(), func(inner repository.Store) error {
			return inner.CreateUser(context.Background(), &model.User{Email: "nested@example.com"})
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	if _, err := db.GetUserByEmail(context.Background(), "nested@example.com"); err == nil {
		t.Error("nested write survived an outer rollback")
	}
}
