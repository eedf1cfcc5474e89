package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestSave_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	publicPath, err := store.Save(strings.NewReader("fake image bytes"), "poster.jpg")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !strings.HasPrefix(publicPath, PublicPrefix) {
		t.Errorf("Save() path = %q, want prefix %q", publicPath, PublicPrefix)
	}
	if !strings.HasSuffix(publicPath, ".jpg") {
		t.Errorf("Save() path = %q, want .jpg extension", publicPath)
	}

	// The bytes should be on disk under the store's directory.
	name := strings.TrimPrefix(publicPath, PublicPrefix)
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("stored bytes = %q, want original content", data)
	}
}

func TestSave_GeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	p1, _ := store.Save(strings.NewReader("a"), "same.png")
	p2, _ := store.Save(strings.NewReader("b"), "same.png")

	if p1 == p2 {
		t.Errorf("Save() reused the name %q for two uploads", p1)
	}
}

func TestSave_RejectsUnknownExtension(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(strings.NewReader("#!/bin/sh"), "script.sh"); err == nil {
		t.Fatal("Save() should reject non-image extensions")
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	store := newTestStore(t)

	publicPath, err := store.Save(strings.NewReader("bytes"), "photo.webp")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Delete(publicPath); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	name := strings.TrimPrefix(publicPath, PublicPrefix)
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Errorf("file %s should be gone after Delete()", name)
	}
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete(PublicPrefix + "nonexistent.png"); err != nil {
		t.Errorf("Delete() on a missing file should be nil, got %v", err)
	}
}

func TestDelete_RejectsForeignPath(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete("/etc/passwd"); err == nil {
		t.Fatal("Delete() should reject paths outside the store")
	}
}
