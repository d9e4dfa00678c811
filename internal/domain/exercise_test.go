package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekIsAbsentBeforeFirstWrite(t *testing.T) {
	ex := Exercise{ID: "ex1"}
	_, ok := ex.Week("settimana_1")
	assert.False(t, ok)

	ex.SetWeekRPE("settimana_1", 7.5)
	slot, ok := ex.Week("settimana_1")
	require.True(t, ok)
	require.NotNil(t, slot.RPE)
	assert.Equal(t, 7.5, *slot.RPE)
	assert.Nil(t, slot.Weight)
}

func TestSetWeekFieldsPreserveSiblings(t *testing.T) {
	ex := squat()

	ex.SetWeekRPE("settimana_1", 8)
	ex.SetWeekWeight("settimana_2", "110kg")
	ex.SetWeekVideo("settimana_1", VideoRef{ID: 4, Filename: "a.mp4", OriginalName: "A.mp4"})

	w1 := ex.Weeks["settimana_1"]
	require.NotNil(t, w1.Weight)
	assert.Equal(t, "100kg", *w1.Weight)
	assert.Equal(t, 8.0, *w1.RPE)
	assert.Equal(t, int64(4), w1.Video.ID)

	w2 := ex.Weeks["settimana_2"]
	assert.Equal(t, "110kg", *w2.Weight)
	assert.Nil(t, w2.RPE)
}

func TestClearVideoKeepsWeekKeys(t *testing.T) {
	ex := squat()
	ex.SetWeekVideo("settimana_1", VideoRef{ID: 3})

	assert.False(t, ex.ClearVideo(99))
	assert.True(t, ex.ClearVideo(3))

	slot, ok := ex.Week("settimana_1")
	require.True(t, ok)
	assert.Nil(t, slot.Video)
	assert.NotNil(t, slot.Weight)
}

func TestSetNotes(t *testing.T) {
	ex := Exercise{ID: "ex1"}
	ex.SetNotes("keep the back straight")
	require.NotNil(t, ex.Notes)
	assert.Equal(t, "keep the back straight", *ex.Notes)
}

func TestFindExerciseAndAttachVideoRef(t *testing.T) {
	exercises := []Exercise{{ID: "ex1"}, squat(), {ID: "ex3"}}
	exercises[1].ID = "ex2"

	assert.Equal(t, 1, FindExercise(exercises, "ex2"))
	assert.Equal(t, -1, FindExercise(exercises, "missing"))

	v := &VideoUpload{ID: 12, ExerciseID: "ex3", WeekID: "settimana_2", Filename: "b.mp4", OriginalName: "B.mp4"}
	assert.True(t, AttachVideoRef(exercises, v))
	assert.Equal(t, VideoRef{ID: 12, Filename: "b.mp4", OriginalName: "B.mp4"}, *exercises[2].Weeks["settimana_2"].Video)

	v.ExerciseID = "nope"
	assert.False(t, AttachVideoRef(exercises, v))
}

func TestWeekSlotIsEmpty(t *testing.T) {
	assert.True(t, WeekSlot{}.IsEmpty())
	rpe := 6.0
	assert.False(t, WeekSlot{RPE: &rpe}.IsEmpty())
}

func TestRenameVideoRefs(t *testing.T) {
	exercises := []Exercise{{ID: "ex1"}}
	exercises[0].SetWeekVideo("settimana_1", VideoRef{ID: 1, Filename: "a.mp4", OriginalName: "A.mp4"})
	exercises[0].SetWeekVideo("settimana_2", VideoRef{ID: 2, Filename: "b.mp4", OriginalName: "B.mp4"})
	before := CloneExercises(exercises)

	assert.True(t, RenameVideoRefs(exercises, "a.mp4", "a_trimmed.mp4"))
	assert.Equal(t, "a_trimmed.mp4", exercises[0].Weeks["settimana_1"].Video.Filename)
	assert.Equal(t, "b.mp4", exercises[0].Weeks["settimana_2"].Video.Filename)
	assert.Equal(t, "a.mp4", before[0].Weeks["settimana_1"].Video.Filename, "refs are replaced, not mutated")

	assert.False(t, RenameVideoRefs(exercises, "missing.mp4", "x.mp4"))
}
