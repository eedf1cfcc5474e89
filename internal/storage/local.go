// Package storage holds uploaded images (event stills, profile photos) on
// local disk and hands back opaque public paths.
//
// The rest of the application only ever sees those paths: the model stores
// them in Photo fields, the server serves them from /uploads/, and nothing
// in the domain logic interprets them. Swapping this for an object store
// later means changing this package and the route that serves the files,
// nothing else.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// PublicPrefix is the URL prefix the server mounts the store under.
const PublicPrefix = "/uploads/"

// allowedExts are the image types we accept. Anything else is rejected
// before a byte is written.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStore is a blob store backed by a single directory.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

// NewLocalStore creates the directory if needed and returns a store over it.
func NewLocalStore(dir string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory files are stored in, for the static file route.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the image to disk under a fresh generated name and returns
// its public path (e.g. "/uploads/cv37rs3pp9olc6atsptg.jpg").
//
// The filename is ours, never the uploader's — the original name is only
// consulted for its extension, so path traversal in a filename is inert.
func (s *LocalStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExts[ext] {
		return "", fmt.Errorf("storage: unsupported image type %q", ext)
	}

	name := xid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: writing %s: %w", dst, err)
	}

	s.logger.Info("image stored", slog.String("file", name))
	return PublicPrefix + name, nil
}

// Delete removes the file behind a public path. Deleting something that is
// already gone is not an error — photo cleanup is best-effort.
func (s *LocalStore) Delete(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return fmt.Errorf("storage: %q is not a stored path", publicPath)
	}

	// path.Base strips any directory components an attacker might smuggle in.
	name := path.Base(strings.TrimPrefix(publicPath, PublicPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: deleting %s: %w", name, err)
	}
	return nil
}
