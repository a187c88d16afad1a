// Package artifacts stores binary workflow results (brochure images, PDF
// reports) and hands back a reference the user can open: a file:// URL for
// the local store or a presigned HTTPS URL for S3.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a handle does not belong to the store
var ErrNotFound = errors.New("artifact not found")

// Store saves artifacts and reopens them by handle
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Open(ctx context.Context, handle string) (io.ReadCloser, error)
}

// LocalStore keeps artifacts as files under a directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir. The directory is created on
// first save.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Dir returns the storage directory
func (s *LocalStore) Dir() string { return s.dir }

// Save writes data to a uniquely prefixed file and returns its file:// URL
func (s *LocalStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(s.dir, uniqueName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Open returns the contents behind a handle produced by Save
func (s *LocalStore) Open(_ context.Context, handle string) (io.ReadCloser, error) {
	path, err := s.pathFor(handle)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Path converts a handle into a filesystem path inside the store
func (s *LocalStore) Path(handle string) (string, error) {
	return s.pathFor(handle)
}

func (s *LocalStore) pathFor(handle string) (string, error) {
	u, err := url.Parse(handle)
	if err != nil || u.Scheme != "file" {
		return "", ErrNotFound
	}

	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}
	path := filepath.Clean(filepath.FromSlash(u.Path))
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	return path, nil
}

func uniqueName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "artifact"
	}
	return uuid.NewString()[:8] + "-" + name
}
