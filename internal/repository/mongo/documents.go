package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"encoding/json"
	"time"
)

// sessionDocument is the stored shape of a domain.WorkoutSession. The parser
// payload is kept as JSON text so arbitrary structures round-trip unchanged.
type sessionDocument struct {
	ID          int64             `bson:"_id"`
	PDFFilename string            `bson:"pdfFilename"`
	SelectedDay *string           `bson:"selectedDay,omitempty"`
	Exercises   []domain.Exercise `bson:"exercises"`
	WorkoutData string            `bson:"workoutData,omitempty"`
	CreatedAt   time.Time         `bson:"createdAt"`
}

type videoDocument struct {
	ID           int64     `bson:"_id"`
	SessionID    int64     `bson:"sessionId"`
	ExerciseID   string    `bson:"exerciseId"`
	WeekID       string    `bson:"weekId"`
	Filename     string    `bson:"filename"`
	OriginalName string    `bson:"originalName"`
	MimeType     string    `bson:"mimeType"`
	Size         int64     `bson:"size"`
	UploadedAt   time.Time `bson:"uploadedAt"`
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

func (d *sessionDocument) toDomain() *domain.WorkoutSession {
	s := &domain.WorkoutSession{
		ID:          d.ID,
		PDFFilename: d.PDFFilename,
		SelectedDay: d.SelectedDay,
		Exercises:   domain.CloneExercises(d.Exercises),
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.WorkoutData != "" {
		s.WorkoutData = json.RawMessage(d.WorkoutData)
	}
	return s
}

func (d *videoDocument) toDomain() *domain.VideoUpload {
	return &domain.VideoUpload{
		ID:           d.ID,
		SessionID:    d.SessionID,
		ExerciseID:   d.ExerciseID,
		WeekID:       d.WeekID,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		UploadedAt:   d.UploadedAt.UTC(),
	}
}

func newVideoDocument(id int64, in domain.NewVideoUpload, now time.Time) videoDocument {
	return videoDocument{
		ID:           id,
		SessionID:    in.SessionID,
		ExerciseID:   in.ExerciseID,
		WeekID:       in.WeekID,
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         in.Size,
		UploadedAt:   now,
	}
}
