package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: "$2a$12$fake",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "ada@example.com")
	}
	if found.PasswordHash != "$2a$12$fake" {
		t.Errorf("PasswordHash = %q, want the stored hash", found.PasswordHash)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{Email: "dup@example.com"}
	if err := db.CreateUser(context.Background(), first); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	second := &model.User{Email: "dup@example.com"}
	err := db.CreateUser(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() duplicate email error = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "grace")

	found, err := db.GetUserByEmail(context.Background(), created.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser_PartialPatch(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "joan")

	bio := "projectionist"
	updated, err := db.UpdateUser(context.Background(), user.ID, model.UserPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if updated.Bio != "projectionist" {
		t.Errorf("Bio = %q, want %q", updated.Bio, "projectionist")
	}
	// Unmentioned fields must survive the patch.
	if updated.Name != "joan" {
		t.Errorf("Name = %q, want %q (patch must not touch it)", updated.Name, "joan")
	}
}

func TestUpdateUser_ExplicitClear(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "mira")

	// nil pointer = leave alone; pointer to "" = clear. These are different.
	empty := ""
	updated, err := db.UpdateUser(context.Background(), user.ID, model.UserPatch{Name: &empty})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != "" {
		t.Errorf("Name = %q, want cleared", updated.Name)
	}
}

func TestUpdateUser_EmptyPatchIsNoop(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "noop")

	before, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}

	updated, err := db.UpdateUser(context.Background(), user.ID, model.UserPatch{})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != "noop" {
		t.Errorf("Name = %q, want unchanged", updated.Name)
	}
	if !updated.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("empty patch should not touch updated_at")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	name := "ghost"
	_, err := db.UpdateUser(context.Background(), "nonexistent-id", model.UserPatch{Name: &name})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_CascadesRoles(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "leaving")
	other := createTestUser(t, db, "staying")
	event := createTestEvent(t, db, "screening")
	createTestHost(t, db, event.ID, other.ID)
	createTestRsvp(t, db, event.ID, user.ID, model.StatusGoing, 2)

	if err := db.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := db.GetUserByID(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetRsvp(context.Background(), event.ID, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("rsvp should cascade with the user; got %v", err)
	}
	// The event and its remaining host are untouched.
	if _, err := db.GetHost(context.Background(), event.ID, other.ID); err != nil {
		t.Errorf("other user's host row should survive: %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteUser(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}
