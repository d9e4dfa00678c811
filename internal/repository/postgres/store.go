// Package postgres implements repository.SessionStore on PostgreSQL with pgx.
// Tables are created by Migrate, not by the store.
package postgres

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, pdf_filename, selected_day, exercises, workout_data, created_at`
const videoColumns = `id, session_id, exercise_id, week_id, filename, original_name, mime_type, size, uploaded_at`

// Store implements repository.SessionStore. The active-session pointer is
// process state, like the in-memory store's.
type Store struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	activeID *int64
}

var _ repository.SessionStore = (*Store)(nil)

// NewStore wraps an already connected pool. It fails fast without one.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, repository.ErrNoConnection
	}
	return &Store{pool: pool}, nil
}

func (s *Store) CreateWorkoutSession(ctx context.Context, in domain.NewWorkoutSession) (*domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	exercises, err := encodeExercises(in.Exercises)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO workout_sessions (pdf_filename, selected_day, exercises, workout_data)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + sessionColumns
	session, err := scanSession(s.pool.QueryRow(ctx, q, in.PDFFilename, in.SelectedDay, exercises, nullableJSON(in.WorkoutData)))
	if err != nil {
		return nil, fmt.Errorf("insert workout session: %w", err)
	}

	s.setActive(session.ID)
	return session, nil
}

func (s *Store) GetWorkoutSession(ctx context.Context, id int64) (*domain.WorkoutSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM workout_sessions WHERE id = $1`
	session, err := scanSession(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *Store) UpdateWorkoutSession(ctx context.Context, id int64, update domain.SessionUpdate) (*domain.WorkoutSession, error) {
	var exercises []byte
	if update.Exercises != nil {
		var err error
		if exercises, err = encodeExercises(*update.Exercises); err != nil {
			return nil, err
		}
	}

	// Presence flags keep this a single statement for every update shape.
	const q = `
		UPDATE workout_sessions SET
			selected_day = CASE WHEN $2::boolean THEN $3::text ELSE selected_day END,
			exercises    = CASE WHEN $4::boolean THEN $5::jsonb ELSE exercises END
		WHERE id = $1
		RETURNING ` + sessionColumns
	session, err := scanSession(s.pool.QueryRow(ctx, q,
		id,
		update.SelectedDay != nil, update.SelectedDay,
		update.Exercises != nil, nullableJSON(exercises),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update workout session %d: %w", id, err)
	}
	return session, nil
}

func (s *Store) DeleteWorkoutSession(ctx context.Context, id int64) bool {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1`, id)
	if err != nil {
		return false
	}
	if tag.RowsAffected() == 0 {
		return false
	}

	s.mu.Lock()
	if s.activeID != nil && *s.activeID == id {
		s.activeID = nil
	}
	s.mu.Unlock()
	return true
}

func (s *Store) CreateVideoUpload(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	video, err := insertVideo(ctx, s.pool, in)
	if err != nil {
		return nil, fmt.Errorf("insert video upload: %w", err)
	}
	return video, nil
}

func (s *Store) GetVideoUpload(ctx context.Context, id int64) (*domain.VideoUpload, error) {
	const q = `SELECT ` + videoColumns + ` FROM video_uploads WHERE id = $1`
	video, err := scanVideo(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return video, nil
}

func (s *Store) GetVideosBySession(ctx context.Context, sessionID int64) ([]domain.VideoUpload, error) {
	const q = `
		SELECT ` + videoColumns + `
		FROM video_uploads
		WHERE session_id = $1
		ORDER BY uploaded_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := make([]domain.VideoUpload, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	return videos, rows.Err()
}

func (s *Store) DeleteVideoUpload(ctx context.Context, id int64) bool {
	tag, err := s.pool.Exec(ctx, `DELETE FROM video_uploads WHERE id = $1`, id)
	if err != nil {
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *Store) GetVideoByFilename(ctx context.Context, filename string) (*domain.VideoUpload, error) {
	const q = `SELECT ` + videoColumns + ` FROM video_uploads WHERE filename = $1 ORDER BY id LIMIT 1`
	video, err := scanVideo(s.pool.QueryRow(ctx, q, filename))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return video, nil
}

func (s *Store) UpdateVideoFilename(ctx context.Context, oldFilename, newFilename string) bool {
	const q = `
		UPDATE video_uploads SET filename = $2
		WHERE id = (SELECT id FROM video_uploads WHERE filename = $1 ORDER BY id LIMIT 1)`
	tag, err := s.pool.Exec(ctx, q, oldFilename, newFilename)
	if err != nil {
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *Store) AttachVideo(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, *domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin attach video: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after Commit

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT exercises FROM workout_sessions WHERE id = $1 FOR UPDATE`, in.SessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}
	exercises, err := decodeExercises(raw)
	if err != nil {
		return nil, nil, err
	}

	video, err := insertVideo(ctx, tx, in)
	if err != nil {
		return nil, nil, fmt.Errorf("insert video upload: %w", err)
	}
	domain.AttachVideoRef(exercises, video)

	encoded, err := encodeExercises(exercises)
	if err != nil {
		return nil, nil, err
	}
	const q = `UPDATE workout_sessions SET exercises = $2 WHERE id = $1 RETURNING ` + sessionColumns
	session, err := scanSession(tx.QueryRow(ctx, q, in.SessionID, encoded))
	if err != nil {
		return nil, nil, fmt.Errorf("link video to session %d: %w", in.SessionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit attach video: %w", err)
	}
	return video, session, nil
}

func (s *Store) GetCurrentSession(ctx context.Context) (*domain.WorkoutSession, error) {
	s.mu.Lock()
	active := s.activeID
	s.mu.Unlock()

	if active != nil {
		return s.GetWorkoutSession(ctx, *active)
	}

	const q = `SELECT ` + sessionColumns + ` FROM workout_sessions ORDER BY created_at DESC, id DESC LIMIT 1`
	session, err := scanSession(s.pool.QueryRow(ctx, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	s.setActive(session.ID)
	return session, nil
}

func (s *Store) SetCurrentSession(_ context.Context, id int64) error {
	s.setActive(id)
	return nil
}

func (s *Store) ClearCurrentSession(_ context.Context) error {
	s.mu.Lock()
	s.activeID = nil
	s.mu.Unlock()
	return nil
}

// ClearAllData deletes every row. SERIAL sequences are left alone.
func (s *Store) ClearAllData(ctx context.Context) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM video_uploads`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM workout_sessions`)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear all data: %w", err)
	}
	return s.ClearCurrentSession(ctx)
}

func (s *Store) Backend() repository.Backend {
	return repository.BackendPostgres
}

// Close releases the pool.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func (s *Store) setActive(id int64) {
	s.mu.Lock()
	s.activeID = &id
	s.mu.Unlock()
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertVideo(ctx context.Context, q querier, in domain.NewVideoUpload) (*domain.VideoUpload, error) {
	const stmt = `
		INSERT INTO video_uploads (session_id, exercise_id, week_id, filename, original_name, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + videoColumns
	return scanVideo(q.QueryRow(ctx, stmt,
		in.SessionID, in.ExerciseID, in.WeekID, in.Filename, in.OriginalName, in.MimeType, in.Size,
	))
}
