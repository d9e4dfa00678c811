package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the two tables the store expects. Videos are removed with
// their session.
const Schema = `
CREATE TABLE IF NOT EXISTS workout_sessions (
	id           SERIAL PRIMARY KEY,
	pdf_filename TEXT NOT NULL,
	selected_day TEXT,
	exercises    JSONB DEFAULT '[]'::jsonb NOT NULL,
	workout_data JSONB,
	created_at   TIMESTAMPTZ DEFAULT NOW() NOT NULL
);

CREATE TABLE IF NOT EXISTS video_uploads (
	id            SERIAL PRIMARY KEY,
	session_id    INTEGER NOT NULL REFERENCES workout_sessions(id) ON DELETE CASCADE,
	exercise_id   TEXT NOT NULL,
	week_id       TEXT NOT NULL,
	filename      TEXT NOT NULL,
	original_name TEXT NOT NULL,
	mime_type     TEXT NOT NULL,
	size          BIGINT NOT NULL,
	uploaded_at   TIMESTAMPTZ DEFAULT NOW() NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_video_uploads_session ON video_uploads(session_id, uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_video_uploads_filename ON video_uploads(filename);
`

// Migrate ensures tables exist. The store itself never calls it.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
