package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// Backend names
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Put stores the content of r under key. size may be -1 when unknown.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error

	// Delete removes the object. Deleting a missing object returns ErrObjectNotFound.
	Delete(ctx context.Context, key string) error

	// DownloadURL returns a URL the client can GET the object from. For S3 it is
	// presigned and valid for expires.
	DownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)

	Backend() string
}

var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrInvalidKey     = errors.New("invalid object key")
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ObjectKey builds "<unix-millis>_<sanitized name>" for an uploaded file.
// Uniqueness relies on the millisecond timestamp only.
func ObjectKey(originalName string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + unsafeKeyChars.ReplaceAllString(name, "_")
}

// validKey rejects keys that could escape the storage root.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
