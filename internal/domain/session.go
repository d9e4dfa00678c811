package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// WorkoutSession is one user's workout-tracking context, from the uploaded
// training plan PDF to the summary sent to the coach.
type WorkoutSession struct {
	ID          int64           `json:"id"`
	PDFFilename string          `json:"pdfFilename"`           // Original uploaded file name, immutable
	SelectedDay *string         `json:"selectedDay,omitempty"` // e.g. "day-3"; nil until a day is chosen
	Exercises   []Exercise      `json:"exercises"`             // Exercises of the selected day
	WorkoutData json.RawMessage `json:"workoutData,omitempty"` // Parser output, set once at creation
	CreatedAt   time.Time       `json:"createdAt"`
}

// Exercise is a single row of the training plan for the selected day.
type Exercise struct {
	ID       string              `bson:"id" json:"id"`
	Name     string              `bson:"name" json:"name"`
	SetsReps string              `bson:"setsReps" json:"setsReps"`
	Weeks    map[string]WeekSlot `bson:"weeks" json:"weeks"`
	Notes    *string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WeekSlot holds the per-week data of an exercise: prescribed load,
// perceived exertion and the recorded video.
type WeekSlot struct {
	Weight *string   `bson:"weight,omitempty" json:"weight,omitempty"`
	RPE    *float64  `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Video  *VideoRef `bson:"video,omitempty" json:"video,omitempty"`
}

// VideoRef points from a week slot to a VideoUpload record.
type VideoRef struct {
	ID           int64  `bson:"id" json:"id"`
	Filename     string `bson:"filename" json:"filename"`
	OriginalName string `bson:"originalName" json:"originalName"`
}

// NewWorkoutSession is the input for creating a session.
type NewWorkoutSession struct {
	PDFFilename string
	SelectedDay *string
	Exercises   []Exercise
	WorkoutData json.RawMessage
}

var ErrPDFFilenameRequired = errors.New("workout session requires pdfFilename")

// Validate checks the fields a store needs to create the session.
func (n NewWorkoutSession) Validate() error {
	if n.PDFFilename == "" {
		return ErrPDFFilenameRequired
	}
	return nil
}

// SessionUpdate is a partial update of a WorkoutSession.
//
// A non-nil field replaces the stored value wholesale, a nil field leaves it
// untouched. Exercises are never deep-merged: callers that edit a single week
// must start from the stored exercises (see Exercise.SetWeekRPE and friends).
type SessionUpdate struct {
	SelectedDay *string
	Exercises   *[]Exercise
}

// IsEmpty reports whether the update would change nothing.
func (u SessionUpdate) IsEmpty() bool {
	return u.SelectedDay == nil && u.Exercises == nil
}

// Apply merges the update into s in place.
func (u SessionUpdate) Apply(s *WorkoutSession) {
	if u.SelectedDay != nil {
		day := *u.SelectedDay
		s.SelectedDay = &day
	}
	if u.Exercises != nil {
		s.Exercises = CloneExercises(*u.Exercises)
	}
}

// Clone returns a deep copy of the session.
func (s *WorkoutSession) Clone() *WorkoutSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.SelectedDay != nil {
		day := *s.SelectedDay
		out.SelectedDay = &day
	}
	out.Exercises = CloneExercises(s.Exercises)
	if s.WorkoutData != nil {
		out.WorkoutData = append(json.RawMessage(nil), s.WorkoutData...)
	}
	return &out
}

// CloneExercises deep copies a slice of exercises. A nil slice becomes an
// empty one so sessions always serialize "exercises": [].
func CloneExercises(in []Exercise) []Exercise {
	out := make([]Exercise, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
