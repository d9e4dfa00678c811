package postgres

import (
	"alcyxob/workout-tracker/internal/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// scanSession reads one workout_sessions row (sessionColumns order).
func scanSession(row pgx.Row) (*domain.WorkoutSession, error) {
	var (
		session     domain.WorkoutSession
		exercises   []byte
		workoutData []byte
		createdAt   time.Time
	)
	if err := row.Scan(
		&session.ID,
		&session.PDFFilename,
		&session.SelectedDay,
		&exercises,
		&workoutData,
		&createdAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeExercises(exercises)
	if err != nil {
		return nil, err
	}
	session.Exercises = decoded
	if len(workoutData) > 0 {
		session.WorkoutData = json.RawMessage(workoutData)
	}
	session.CreatedAt = normalizeTime(createdAt)
	return &session, nil
}

// scanVideo reads one video_uploads row (videoColumns order).
func scanVideo(row pgx.Row) (*domain.VideoUpload, error) {
	var (
		video      domain.VideoUpload
		uploadedAt time.Time
	)
	if err := row.Scan(
		&video.ID,
		&video.SessionID,
		&video.ExerciseID,
		&video.WeekID,
		&video.Filename,
		&video.OriginalName,
		&video.MimeType,
		&video.Size,
		&uploadedAt,
	); err != nil {
		return nil, err
	}
	video.UploadedAt = normalizeTime(uploadedAt)
	return &video, nil
}

// normalizeTime hands callers UTC regardless of the column type
// (TIMESTAMP from older schemas, TIMESTAMPTZ from Schema).
func normalizeTime(t time.Time) time.Time {
	return t.UTC()
}

func encodeExercises(exercises []domain.Exercise) ([]byte, error) {
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("encode exercises: %w", err)
	}
	return data, nil
}

func decodeExercises(raw []byte) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	if len(raw) == 0 || string(raw) == "null" {
		return exercises, nil
	}
	if err := json.Unmarshal(raw, &exercises); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

// nullableJSON maps an empty payload to SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
