package service

import (
	"alcyxob/workout-tracker/internal/document"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/external"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/summary"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrNoPlanPages      = errors.New("no exercise tables found in the PDF")
	ErrNoActiveSession  = errors.New("no active session")
	ErrInvalidTrim      = errors.New("invalid trim parameters")
	ErrInvalidFile      = errors.New("invalid file")
)

// PlanUpload is a plan PDF already written to a local file.
type PlanUpload struct {
	Path         string
	OriginalName string
	Size         int64
}

// PlanResult is the outcome of UploadPlan.
type PlanResult struct {
	Session      *domain.WorkoutSession
	Pages        []domain.PlanPage
	SessionToken string
	StoredAs     string // file storage key of the PDF
}

// ExerciseUpdate edits one exercise of a session. Nil fields are left untouched.
type ExerciseUpdate struct {
	SessionID  int64
	ExerciseID string
	WeekID     string
	RPE        *float64
	Weight     *string
	Notes      *string
}

// VideoUploadInput is a recorded video for one exercise/week slot.
type VideoUploadInput struct {
	SessionID    int64
	ExerciseID   string
	WeekID       string
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// TrimRequest cuts [TIn, TOut] seconds out of a local video file.
type TrimRequest struct {
	InputPath string
	TIn       float64
	TOut      float64
	// ReplaceFilename, when set, points the upload stored under that
	// filename at the trimmed file and removes the old one.
	ReplaceFilename string
	// SessionID, when set, restricts ReplaceFilename to that session's uploads.
	SessionID int64
}

// TrimResult names the stored trimmed video.
type TrimResult struct {
	Filename string
	Replaced bool
}

// SessionSummary is the recap of a session shown to the athlete and sent to the coach.
type SessionSummary struct {
	Session           *domain.WorkoutSession    `json:"session"`
	Videos            []domain.VideoUpload      `json:"videos"`
	Exercises         []summary.ExerciseSummary `json:"exercises"`
	AverageRPE        *float64                  `json:"averageRpe,omitempty"`
	TotalVideos       int                       `json:"totalVideos"`
	ExercisesWithData int                       `json:"exercisesWithData"`
	ShareText         string                    `json:"shareText"`
}

// --- Service Interface ---
type WorkoutService interface {
	UploadPlan(ctx context.Context, in PlanUpload) (*PlanResult, error)
	SelectDay(ctx context.Context, sessionID int64, dayID string, fallback []domain.Exercise) (*domain.WorkoutSession, error)
	UpdateExercise(ctx context.Context, in ExerciseUpdate) (*domain.WorkoutSession, error)
	UploadVideo(ctx context.Context, in VideoUploadInput) (*domain.VideoUpload, error)
	ListVideos(ctx context.Context, sessionID int64) ([]domain.VideoUpload, error)
	// CurrentSession returns a nil session when none can be resolved.
	CurrentSession(ctx context.Context, sessionID int64) (*domain.WorkoutSession, []domain.VideoUpload, error)
	DeleteVideo(ctx context.Context, videoID int64) error
	TrimVideo(ctx context.Context, in TrimRequest) (*TrimResult, error)
	Summary(ctx context.Context, sessionID int64) (*SessionSummary, error)
	SendToCoach(ctx context.Context, sessionID int64) error
	Restart(ctx context.Context) error
}

// --- Service Implementation ---

type workoutService struct {
	store    repository.SessionStore
	files    storage.FileStorage
	parser   external.PlanParser
	trimmer  external.VideoTrimmer
	notifier external.CoachNotifier
	tokens   *SessionTokens
	tempDir  string
	now      func() time.Time
}

// NewWorkoutService wires the workout flow to its collaborators.
func NewWorkoutService(
	store repository.SessionStore,
	files storage.FileStorage,
	parser external.PlanParser,
	trimmer external.VideoTrimmer,
	notifier external.CoachNotifier,
	tokens *SessionTokens,
) WorkoutService {
	return &workoutService{
		store:    store,
		files:    files,
		parser:   parser,
		trimmer:  trimmer,
		notifier: notifier,
		tokens:   tokens,
		tempDir:  os.TempDir(),
		now:      time.Now,
	}
}

// === Plan ===

// UploadPlan checks the PDF, parses it, keeps the file and opens a new session.
func (s *workoutService) UploadPlan(ctx context.Context, in PlanUpload) (*PlanResult, error) {
	if in.Path == "" || in.OriginalName == "" {
		return nil, fmt.Errorf("%w: pdf file is required", ErrValidationFailed)
	}

	if err := document.CheckPDFHeader(in.Path); err != nil {
		if errors.Is(err, document.ErrNotPDF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		return nil, err
	}
	if info, err := document.InspectPDF(in.Path); err != nil {
		log.Printf("WARN: Could not inspect plan %q, handing it to the parser anyway: %v", in.OriginalName, err)
	} else {
		log.Printf("INFO: Parsing plan %q (%d pages)", in.OriginalName, info.Pages)
	}

	plan, raw, err := s.parser.Parse(ctx, in.Path)
	if err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(plan.Pages) == 0 {
		return nil, ErrNoPlanPages
	}

	key := storage.ObjectKey(in.OriginalName, s.now())
	if err := s.putFile(ctx, key, "application/pdf", in.Path); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}

	session, err := s.store.CreateWorkoutSession(ctx, domain.NewWorkoutSession{
		PDFFilename: in.OriginalName,
		Exercises:   []domain.Exercise{},
		WorkoutData: raw,
	})
	if err != nil {
		s.removeFile(ctx, key)
		return nil, err
	}

	result := &PlanResult{Session: session, Pages: plan.Pages, StoredAs: key}
	if s.tokens != nil {
		token, err := s.tokens.Issue(session.ID)
		if err != nil {
			if !s.store.DeleteWorkoutSession(ctx, session.ID) {
				log.Printf("WARN: Could not remove session %d after token failure", session.ID)
			}
			s.removeFile(ctx, key)
			return nil, err
		}
		result.SessionToken = token
	}
	return result, nil
}

// SelectDay loads the exercises of the chosen page into the session. An
// unknown session id falls back to the current session.
func (s *workoutService) SelectDay(ctx context.Context, sessionID int64, dayID string, fallback []domain.Exercise) (*domain.WorkoutSession, error) {
	pageNumber, err := domain.ParseDayID(dayID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.store.GetWorkoutSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		session, err = s.store.GetCurrentSession(ctx)
		if err == nil {
			log.Printf("INFO: Session %d not found, using current session %d", sessionID, session.ID)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	plan, err := domain.DecodePlanData(session.WorkoutData)
	if err != nil {
		return nil, err
	}
	exercises := []domain.Exercise{}
	if page, ok := plan.Page(pageNumber); ok {
		exercises = domain.CloneExercises(page.Exercises)
	} else if len(fallback) > 0 {
		exercises = domain.CloneExercises(fallback)
	}

	updated, err := s.store.UpdateWorkoutSession(ctx, session.ID, domain.SessionUpdate{
		SelectedDay: &dayID,
		Exercises:   &exercises,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	// Day selection makes this the session later requests fall back to.
	if err := s.store.SetCurrentSession(ctx, updated.ID); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateExercise merges RPE, weight and notes into one exercise and writes
// back the whole exercises array.
func (s *workoutService) UpdateExercise(ctx context.Context, in ExerciseUpdate) (*domain.WorkoutSession, error) {
	if in.ExerciseID == "" {
		return nil, fmt.Errorf("%w: exerciseId is required", ErrValidationFailed)
	}
	if (in.RPE != nil || in.Weight != nil) && in.WeekID == "" {
		return nil, fmt.Errorf("%w: weekId is required", ErrValidationFailed)
	}
	if in.RPE != nil && (*in.RPE < 0 || *in.RPE > 10) {
		return nil, fmt.Errorf("%w: rpe must be between 0 and 10", ErrValidationFailed)
	}

	session, err := s.store.GetWorkoutSession(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	exercises := session.Exercises
	idx := domain.FindExercise(exercises, in.ExerciseID)
	if idx < 0 {
		return nil, ErrExerciseNotFound
	}
	if in.RPE != nil {
		exercises[idx].SetWeekRPE(in.WeekID, *in.RPE)
	}
	if in.Weight != nil {
		exercises[idx].SetWeekWeight(in.WeekID, *in.Weight)
	}
	if in.Notes != nil {
		exercises[idx].SetNotes(*in.Notes)
	}

	updated, err := s.store.UpdateWorkoutSession(ctx, session.ID, domain.SessionUpdate{Exercises: &exercises})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// === Videos ===

// UploadVideo stores the file and links the upload to its week slot.
func (s *workoutService) UploadVideo(ctx context.Context, in VideoUploadInput) (*domain.VideoUpload, error) {
	if in.SessionID <= 0 || in.ExerciseID == "" || in.WeekID == "" {
		return nil, fmt.Errorf("%w: sessionId, exerciseId and weekId are required", ErrValidationFailed)
	}
	if in.Content == nil {
		return nil, fmt.Errorf("%w: video file is required", ErrValidationFailed)
	}
	if !strings.HasPrefix(in.MimeType, "video/") {
		return nil, fmt.Errorf("%w: only video files are allowed", ErrInvalidFile)
	}

	key := storage.ObjectKey(in.OriginalName, s.now())
	if err := s.files.Put(ctx, key, in.MimeType, in.Content, in.Size); err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}

	video, _, err := s.store.AttachVideo(ctx, domain.NewVideoUpload{
		SessionID:    in.SessionID,
		ExerciseID:   in.ExerciseID,
		WeekID:       in.WeekID,
		Filename:     key,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         in.Size,
	})
	if err != nil {
		s.removeFile(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return video, nil
}

// ListVideos returns the videos of the resolved session, or none.
func (s *workoutService) ListVideos(ctx context.Context, sessionID int64) ([]domain.VideoUpload, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) || errors.Is(err, ErrSessionNotFound) {
			return []domain.VideoUpload{}, nil
		}
		return nil, err
	}
	return s.store.GetVideosBySession(ctx, session.ID)
}

func (s *workoutService) CurrentSession(ctx context.Context, sessionID int64) (*domain.WorkoutSession, []domain.VideoUpload, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) || errors.Is(err, ErrSessionNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	videos, err := s.store.GetVideosBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, videos, nil
}

// DeleteVideo removes the record, clears its week reference and, best
// effort, the stored file.
func (s *workoutService) DeleteVideo(ctx context.Context, videoID int64) error {
	video, err := s.store.GetVideoUpload(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if !s.store.DeleteVideoUpload(ctx, videoID) {
		return ErrVideoNotFound
	}

	session, err := s.store.GetWorkoutSession(ctx, video.SessionID)
	if err == nil {
		exercises := session.Exercises
		if idx := domain.FindExercise(exercises, video.ExerciseID); idx >= 0 && exercises[idx].ClearVideo(videoID) {
			if _, err := s.store.UpdateWorkoutSession(ctx, session.ID, domain.SessionUpdate{Exercises: &exercises}); err != nil {
				log.Printf("WARN: Could not clear video %d from session %d: %v", videoID, session.ID, err)
			}
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("WARN: Could not load session %d to clear video %d: %v", video.SessionID, videoID, err)
	}

	s.removeFile(ctx, video.Filename)
	return nil
}

// TrimVideo runs the trimmer on a local file and stores the result as
// "<millis>_trimmed.mp4". With ReplaceFilename it also repoints the owning
// upload and its session references at the trimmed file.
func (s *workoutService) TrimVideo(ctx context.Context, in TrimRequest) (*TrimResult, error) {
	if in.InputPath == "" {
		return nil, fmt.Errorf("%w: video file is required", ErrValidationFailed)
	}
	if in.TIn < 0 || in.TOut < 0 || in.TIn >= in.TOut {
		return nil, ErrInvalidTrim
	}

	var target *domain.VideoUpload
	if in.ReplaceFilename != "" {
		video, err := s.store.GetVideoByFilename(ctx, in.ReplaceFilename)
		switch {
		case err == nil:
			if in.SessionID > 0 && video.SessionID != in.SessionID {
				return nil, ErrVideoNotFound
			}
			target = video
		case errors.Is(err, repository.ErrNotFound):
			log.Printf("WARN: No video record stored as %q, trimmed file will be kept alongside", in.ReplaceFilename)
		default:
			return nil, err
		}
	}

	outPath := filepath.Join(s.tempDir, "trim-"+uuid.NewString()+".mp4")
	defer os.Remove(outPath)

	if err := s.trimmer.Trim(ctx, in.InputPath, outPath, in.TIn, in.TOut); err != nil {
		return nil, fmt.Errorf("trim video: %w", err)
	}

	key := strconv.FormatInt(s.now().UnixMilli(), 10) + "_trimmed.mp4"
	if err := s.putFile(ctx, key, "video/mp4", outPath); err != nil {
		return nil, fmt.Errorf("store trimmed video: %w", err)
	}
	result := &TrimResult{Filename: key}

	if target == nil {
		return result, nil
	}
	if !s.store.UpdateVideoFilename(ctx, in.ReplaceFilename, key) {
		log.Printf("WARN: Video %d disappeared before rename, trimmed file kept as %q", target.ID, key)
		return result, nil
	}
	result.Replaced = true

	// References live in the session that owns the upload, which need not
	// be the current one.
	session, err := s.store.GetWorkoutSession(ctx, target.SessionID)
	if err == nil {
		exercises := session.Exercises
		if domain.RenameVideoRefs(exercises, in.ReplaceFilename, key) {
			if _, err := s.store.UpdateWorkoutSession(ctx, session.ID, domain.SessionUpdate{Exercises: &exercises}); err != nil {
				log.Printf("WARN: Could not update video references in session %d: %v", session.ID, err)
			}
		}
	} else {
		log.Printf("WARN: Session %d of video %d not found: %v", target.SessionID, target.ID, err)
	}
	s.removeFile(ctx, in.ReplaceFilename)
	return result, nil
}

// === Summary ===

func (s *workoutService) Summary(ctx context.Context, sessionID int64) (*SessionSummary, error) {
	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	videos, err := s.store.GetVideosBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	out := &SessionSummary{
		Session:     session,
		Videos:      videos,
		Exercises:   summary.ExerciseSummaries(session.Exercises, videos),
		TotalVideos: len(videos),
	}
	if avg, ok := summary.RPEAverage(session.Exercises); ok {
		out.AverageRPE = &avg
	}
	for _, e := range out.Exercises {
		if e.HasData {
			out.ExercisesWithData++
		}
	}
	day := ""
	if session.SelectedDay != nil {
		day = *session.SelectedDay
	}
	out.ShareText = summary.ShareText(day, session.Exercises, videos)
	return out, nil
}

// SendToCoach hands the session recap to the notifier.
func (s *workoutService) SendToCoach(ctx context.Context, sessionID int64) error {
	sum, err := s.Summary(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, external.CoachPayload{
		Session: sum.Session,
		Videos:  sum.Videos,
		Text:    sum.ShareText,
	}); err != nil {
		return fmt.Errorf("send to coach: %w", err)
	}
	log.Printf("INFO: Session %d sent to coach", sum.Session.ID)
	return nil
}

// Restart wipes every session and video record. Stored files are kept.
func (s *workoutService) Restart(ctx context.Context) error {
	return s.store.ClearAllData(ctx)
}

// === Helpers ===

// resolveSession uses the explicit id when given, otherwise the store's
// current session.
func (s *workoutService) resolveSession(ctx context.Context, sessionID int64) (*domain.WorkoutSession, error) {
	if sessionID > 0 {
		session, err := s.store.GetWorkoutSession(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return session, err
	}
	session, err := s.store.GetCurrentSession(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	return session, err
}

func (s *workoutService) putFile(ctx context.Context, key, contentType, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	return s.files.Put(ctx, key, contentType, f, st.Size())
}

// removeFile deletes a stored file; failures are only logged.
func (s *workoutService) removeFile(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		log.Printf("WARN: Could not delete file %q: %v", key, err)
	}
}
