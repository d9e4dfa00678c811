// internal/domain/exercise.go
package domain

// Clone returns a deep copy of the exercise, including its week slots.
func (e Exercise) Clone() Exercise {
	out := e
	if e.Notes != nil {
		notes := *e.Notes
		out.Notes = &notes
	}
	out.Weeks = make(map[string]WeekSlot, len(e.Weeks))
	for id, slot := range e.Weeks {
		out.Weeks[id] = slot.Clone()
	}
	return out
}

// Clone returns a deep copy of the week slot.
func (w WeekSlot) Clone() WeekSlot {
	out := WeekSlot{}
	if w.Weight != nil {
		weight := *w.Weight
		out.Weight = &weight
	}
	if w.RPE != nil {
		rpe := *w.RPE
		out.RPE = &rpe
	}
	if w.Video != nil {
		ref := *w.Video
		out.Video = &ref
	}
	return out
}

// IsEmpty reports whether the slot carries no data at all.
func (w WeekSlot) IsEmpty() bool {
	return w.Weight == nil && w.RPE == nil && w.Video == nil
}

// Week returns the slot for weekID. The second result is false when the
// week has never been written.
func (e *Exercise) Week(weekID string) (WeekSlot, bool) {
	slot, ok := e.Weeks[weekID]
	return slot, ok
}

// SetWeekRPE writes the RPE of one week, creating the slot on demand.
// Other fields of the slot and other weeks are preserved.
func (e *Exercise) SetWeekRPE(weekID string, rpe float64) {
	slot := e.slot(weekID)
	slot.RPE = &rpe
	e.Weeks[weekID] = slot
}

// SetWeekWeight writes the load of one week, creating the slot on demand.
func (e *Exercise) SetWeekWeight(weekID, weight string) {
	slot := e.slot(weekID)
	slot.Weight = &weight
	e.Weeks[weekID] = slot
}

// SetWeekVideo links a video to one week, creating the slot on demand.
func (e *Exercise) SetWeekVideo(weekID string, ref VideoRef) {
	slot := e.slot(weekID)
	slot.Video = &ref
	e.Weeks[weekID] = slot
}

// SetNotes replaces the free-text notes of the exercise.
func (e *Exercise) SetNotes(notes string) {
	e.Notes = &notes
}

// ClearVideo removes every week reference to videoID. Week slots are kept
// even when they become empty: week keys are never removed.
func (e *Exercise) ClearVideo(videoID int64) bool {
	cleared := false
	for id, slot := range e.Weeks {
		if slot.Video != nil && slot.Video.ID == videoID {
			slot.Video = nil
			e.Weeks[id] = slot
			cleared = true
		}
	}
	return cleared
}

func (e *Exercise) slot(weekID string) WeekSlot {
	if e.Weeks == nil {
		e.Weeks = make(map[string]WeekSlot)
	}
	return e.Weeks[weekID]
}

// FindExercise returns the index of the exercise with the given id, or -1.
func FindExercise(exercises []Exercise, id string) int {
	for i := range exercises {
		if exercises[i].ID == id {
			return i
		}
	}
	return -1
}

// AttachVideoRef links the uploaded video to its exercise/week slot in
// exercises. It reports false when no exercise matches; the upload itself
// is still valid in that case because slots are matched by convention.
func AttachVideoRef(exercises []Exercise, v *VideoUpload) bool {
	idx := FindExercise(exercises, v.ExerciseID)
	if idx < 0 {
		return false
	}
	exercises[idx].SetWeekVideo(v.WeekID, v.Ref())
	return true
}

// RenameVideoRefs rewrites the filename of every week reference to oldFilename.
func RenameVideoRefs(exercises []Exercise, oldFilename, newFilename string) bool {
	renamed := false
	for i := range exercises {
		for weekID, slot := range exercises[i].Weeks {
			if slot.Video != nil && slot.Video.Filename == oldFilename {
				ref := *slot.Video
				ref.Filename = newFilename
				slot.Video = &ref
				exercises[i].Weeks[weekID] = slot
				renamed = true
			}
		}
	}
	return renamed
}
