package repository

import (
	"alcyxob/workout-tracker/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.
)

// Error constants for repository layer
var (
	// ErrNotFound is the "absent" result of lookups and updates. Stores return
	// it unwrapped and never for a failure of the underlying medium.
	ErrNotFound = RepositoryError("not found")
	// ErrNoConnection is returned when a durable store is built without a live connection.
	ErrNoConnection = RepositoryError("database connection not available")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Backend names a SessionStore implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
)

// Durable reports whether data survives a process restart.
func (b Backend) Durable() bool {
	return b == BackendPostgres || b == BackendMongo
}

// SessionStore is the persistence contract for workout sessions and their
// video uploads. Every implementation is interchangeable behind it.
type SessionStore interface {
	// CreateWorkoutSession assigns a new id, sets CreatedAt, defaults Exercises
	// to an empty slice and makes the new session the current one.
	CreateWorkoutSession(ctx context.Context, in domain.NewWorkoutSession) (*domain.WorkoutSession, error)
	GetWorkoutSession(ctx context.Context, id int64) (*domain.WorkoutSession, error)
	// UpdateWorkoutSession shallow-merges the update into the stored session.
	UpdateWorkoutSession(ctx context.Context, id int64, update domain.SessionUpdate) (*domain.WorkoutSession, error)
	// DeleteWorkoutSession reports false on nonexistence or on any failure.
	DeleteWorkoutSession(ctx context.Context, id int64) bool

	CreateVideoUpload(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, error)
	GetVideoUpload(ctx context.Context, id int64) (*domain.VideoUpload, error)
	// GetVideosBySession returns the session's videos, newest first.
	GetVideosBySession(ctx context.Context, sessionID int64) ([]domain.VideoUpload, error)
	DeleteVideoUpload(ctx context.Context, id int64) bool
	// GetVideoByFilename returns the lowest-id record stored under filename.
	GetVideoByFilename(ctx context.Context, filename string) (*domain.VideoUpload, error)
	// UpdateVideoFilename rewrites the filename of the record stored under
	// oldFilename, e.g. after trimming. False when nothing matched.
	UpdateVideoFilename(ctx context.Context, oldFilename, newFilename string) bool

	// AttachVideo creates the upload record and links it from the session's
	// exercise/week slot in a single unit of work.
	AttachVideo(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, *domain.WorkoutSession, error)

	// GetCurrentSession returns the active session. Without an active pointer
	// it adopts the most recently created session as active (a write during a read).
	GetCurrentSession(ctx context.Context) (*domain.WorkoutSession, error)
	SetCurrentSession(ctx context.Context, id int64) error
	ClearCurrentSession(ctx context.Context) error
	// ClearAllData wipes sessions, videos and the active pointer. Id
	// sequences are not reset: ids stay monotonic for the store's lifetime.
	ClearAllData(ctx context.Context) error

	Backend() Backend
	Close(ctx context.Context) error
}
