package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/selector"
)

// --- Request DTOs ---

type SelectDayRequest struct {
	SessionID int64             `json:"sessionId"`
	DayID     string            `json:"dayId" binding:"required"`
	Exercises []domain.Exercise `json:"exercises"` // used when the plan has no such page
}

type UpdateExerciseRequest struct {
	SessionID  int64    `json:"sessionId"`
	ExerciseID string   `json:"exerciseId" binding:"required"`
	WeekID     string   `json:"weekId"`
	RPE        *float64 `json:"rpe"`
	Weight     *string  `json:"weight"`
	Notes      *string  `json:"notes"`
}

// SessionRequest optionally names a session in the body of action endpoints.
type SessionRequest struct {
	SessionID int64 `json:"sessionId"`
}

// --- Response DTOs ---

type UploadPDFResponse struct {
	SessionID    int64             `json:"sessionId"`
	Filename     string            `json:"filename"`
	Pages        []domain.PlanPage `json:"pages"`
	SessionToken string            `json:"sessionToken,omitempty"`
}

type SessionResponse struct {
	Success bool                   `json:"success"`
	Session *domain.WorkoutSession `json:"session"`
}

type UploadVideoResponse struct {
	VideoID      int64  `json:"videoId"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
}

type CurrentSessionResponse struct {
	Session *domain.WorkoutSession `json:"session"`
	Videos  []domain.VideoUpload   `json:"videos"`
}

type TrimResponse struct {
	Path     string `json:"path"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Replaced bool   `json:"replaced"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type StorageStatusResponse struct {
	selector.Status
	HasDatabaseURL bool   `json:"hasDatabaseUrl"`
	FileStorage    string `json:"fileStorage"`
	Message        string `json:"message"`
}

type MigrateResponse struct {
	Error string `json:"error,omitempty"`
	repository.DiagnosticReport
}
