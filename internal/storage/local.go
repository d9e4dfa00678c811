package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// localStorage keeps files in a single directory served by the API under PublicPrefix.
type localStorage struct {
	dir          string
	publicPrefix string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir, publicPrefix string) (FileStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	log.Printf("INFO: Local file storage initialized in %s", dir)
	return &localStorage{dir: dir, publicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// Dir returns the directory local files are kept in.
func (s *localStorage) Dir() string {
	return s.dir
}

func (s *localStorage) Put(_ context.Context, key, _ string, r io.Reader, _ int64) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, key))
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func (s *localStorage) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	if _, err := os.Stat(filepath.Join(s.dir, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrObjectNotFound
		}
		return "", err
	}
	return s.publicPrefix + "/" + url.PathEscape(key), nil
}

func (s *localStorage) Backend() string {
	return BackendLocal
}
