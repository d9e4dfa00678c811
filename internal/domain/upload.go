package domain

import (
	"errors"
	"time"
)

// VideoUpload stores metadata about a video recorded for one exercise/week
// slot. The file itself lives in the file storage under Filename.
type VideoUpload struct {
	ID           int64     `json:"id"`
	SessionID    int64     `json:"sessionId"`    // Link to the WorkoutSession
	ExerciseID   string    `json:"exerciseId"`   // Not validated against the session's exercises
	WeekID       string    `json:"weekId"`       // e.g. "settimana_1"
	Filename     string    `json:"filename"`     // Storage key
	OriginalName string    `json:"originalName"` // Name provided by the client
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Ref returns the reference stored in the exercise's week slot.
func (v *VideoUpload) Ref() VideoRef {
	return VideoRef{ID: v.ID, Filename: v.Filename, OriginalName: v.OriginalName}
}

// NewVideoUpload is the input for creating a video upload record.
type NewVideoUpload struct {
	SessionID    int64
	ExerciseID   string
	WeekID       string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
}

var ErrVideoUploadIncomplete = errors.New("video upload requires sessionId, exerciseId, weekId and filename")

// Validate checks the fields a store needs to create the record.
func (n NewVideoUpload) Validate() error {
	if n.SessionID <= 0 || n.ExerciseID == "" || n.WeekID == "" || n.Filename == "" {
		return ErrVideoUploadIncomplete
	}
	return nil
}
