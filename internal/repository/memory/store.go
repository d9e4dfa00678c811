// Package memory implements repository.SessionStore in process memory.
// Everything is lost on restart.
package memory

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore implements repository.SessionStore
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.WorkoutSession
	videos   map[int64]*domain.VideoUpload

	nextSessionID int64
	nextVideoID   int64
	activeID      *int64

	now func() time.Time
}

var _ repository.SessionStore = (*memoryStore)(nil)

// NewStore creates an empty volatile store. Ids start at 1.
func NewStore() repository.SessionStore {
	return newStore(func() time.Time { return time.Now().UTC() })
}

func newStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		sessions:      make(map[int64]*domain.WorkoutSession),
		videos:        make(map[int64]*domain.VideoUpload),
		nextSessionID: 1,
		nextVideoID:   1,
		now:           now,
	}
}

func (s *memoryStore) CreateWorkoutSession(_ context.Context, in domain.NewWorkoutSession) (*domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &domain.WorkoutSession{
		ID:          s.nextSessionID,
		PDFFilename: in.PDFFilename,
		Exercises:   domain.CloneExercises(in.Exercises),
		WorkoutData: in.WorkoutData,
		CreatedAt:   s.now(),
	}
	if in.SelectedDay != nil {
		day := *in.SelectedDay
		session.SelectedDay = &day
	}
	s.nextSessionID++

	stored := session.Clone()
	s.sessions[stored.ID] = stored
	id := stored.ID
	s.activeID = &id

	return session, nil
}

func (s *memoryStore) GetWorkoutSession(_ context.Context, id int64) (*domain.WorkoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return session.Clone(), nil
}

func (s *memoryStore) UpdateWorkoutSession(_ context.Context, id int64, update domain.SessionUpdate) (*domain.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	update.Apply(session)
	return session.Clone(), nil
}

// DeleteWorkoutSession does not cascade to the session's videos.
func (s *memoryStore) DeleteWorkoutSession(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	if s.activeID != nil && *s.activeID == id {
		s.activeID = nil
	}
	return true
}

func (s *memoryStore) CreateVideoUpload(_ context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertVideoLocked(in), nil
}

func (s *memoryStore) insertVideoLocked(in domain.NewVideoUpload) *domain.VideoUpload {
	video := &domain.VideoUpload{
		ID:           s.nextVideoID,
		SessionID:    in.SessionID,
		ExerciseID:   in.ExerciseID,
		WeekID:       in.WeekID,
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         in.Size,
		UploadedAt:   s.now(),
	}
	s.nextVideoID++

	stored := *video
	s.videos[video.ID] = &stored
	return video
}

func (s *memoryStore) GetVideoUpload(_ context.Context, id int64) (*domain.VideoUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *video
	return &out, nil
}

func (s *memoryStore) GetVideosBySession(_ context.Context, sessionID int64) ([]domain.VideoUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	videos := make([]domain.VideoUpload, 0)
	for _, v := range s.videos {
		if v.SessionID == sessionID {
			videos = append(videos, *v)
		}
	}
	// Same order as the durable stores: newest first, id breaks ties.
	sort.Slice(videos, func(i, j int) bool {
		if !videos[i].UploadedAt.Equal(videos[j].UploadedAt) {
			return videos[i].UploadedAt.After(videos[j].UploadedAt)
		}
		return videos[i].ID > videos[j].ID
	})
	return videos, nil
}

func (s *memoryStore) DeleteVideoUpload(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return false
	}
	delete(s.videos, id)
	return true
}

func (s *memoryStore) GetVideoByFilename(_ context.Context, filename string) (*domain.VideoUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if match := s.videoByFilename(filename); match != nil {
		out := *match
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) UpdateVideoFilename(_ context.Context, oldFilename, newFilename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := s.videoByFilename(oldFilename)
	if match == nil {
		return false
	}
	match.Filename = newFilename
	return true
}

// videoByFilename picks the lowest id when several records share a
// filename. Callers hold s.mu.
func (s *memoryStore) videoByFilename(filename string) *domain.VideoUpload {
	var match *domain.VideoUpload
	for _, v := range s.videos {
		if v.Filename == filename && (match == nil || v.ID < match.ID) {
			match = v
		}
	}
	return match
}

func (s *memoryStore) AttachVideo(_ context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, *domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[in.SessionID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	video := s.insertVideoLocked(in)
	domain.AttachVideoRef(session.Exercises, video)

	return video, session.Clone(), nil
}

func (s *memoryStore) GetCurrentSession(_ context.Context) (*domain.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != nil {
		session, ok := s.sessions[*s.activeID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		return session.Clone(), nil
	}

	var recent *domain.WorkoutSession
	for _, session := range s.sessions {
		if recent == nil || session.CreatedAt.After(recent.CreatedAt) ||
			(session.CreatedAt.Equal(recent.CreatedAt) && session.ID > recent.ID) {
			recent = session
		}
	}
	if recent == nil {
		return nil, repository.ErrNotFound
	}
	id := recent.ID
	s.activeID = &id
	return recent.Clone(), nil
}

func (s *memoryStore) SetCurrentSession(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = &id
	return nil
}

func (s *memoryStore) ClearCurrentSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = nil
	return nil
}

func (s *memoryStore) ClearAllData(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[int64]*domain.WorkoutSession)
	s.videos = make(map[int64]*domain.VideoUpload)
	s.activeID = nil
	return nil
}

func (s *memoryStore) Backend() repository.Backend {
	return repository.BackendMemory
}

func (s *memoryStore) Close(_ context.Context) error {
	return nil
}
