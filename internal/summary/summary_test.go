package summary

import (
	"alcyxob/workout-tracker/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleExercises() []domain.Exercise {
	return []domain.Exercise{
		{
			ID: "ex1", Name: "Squat", SetsReps: "3x8",
			Weeks: map[string]domain.WeekSlot{
				"week_10": {Weight: ptr("110kg"), RPE: ptr(9.0)},
				"week_2":  {Weight: ptr("100kg"), RPE: ptr(7.5)},
			},
		},
		{
			ID: "ex2", Name: "Bench", SetsReps: "4x6",
			Weeks: map[string]domain.WeekSlot{"week_1": {Weight: ptr("80kg")}},
		},
		{
			ID: "ex3", Name: "Row", SetsReps: "3x10",
			Weeks: map[string]domain.WeekSlot{"week_1": {RPE: ptr(8.0)}},
		},
	}
}

func TestSortWeekIDs(t *testing.T) {
	ids := []string{"week_10", "week_2", "week_1", "settimana_3", "settimana_12"}
	assert.Equal(t, []string{"settimana_3", "settimana_12", "week_1", "week_2", "week_10"}, SortWeekIDs(ids))

	assert.Equal(t, []string{"w", "w1"}, SortWeekIDs([]string{"w1", "w"}))
	assert.Empty(t, SortWeekIDs(nil))
}

func TestRPEAverage(t *testing.T) {
	avg, ok := RPEAverage(sampleExercises())
	require.True(t, ok)
	assert.Equal(t, 8.2, avg) // (9 + 7.5 + 8) / 3 = 8.1666…

	_, ok = RPEAverage([]domain.Exercise{{ID: "ex", Weeks: map[string]domain.WeekSlot{"week_1": {RPE: ptr(0.0)}}}})
	assert.False(t, ok, "zero RPE counts as not recorded")

	_, ok = RPEAverage(nil)
	assert.False(t, ok)
}

func TestExerciseSummaries(t *testing.T) {
	videos := []domain.VideoUpload{{ID: 1, ExerciseID: "ex2"}, {ID: 2, ExerciseID: "ex2"}}
	got := ExerciseSummaries(sampleExercises(), videos)
	require.Len(t, got, 3)

	assert.Equal(t, []float64{7.5, 9}, got[0].RPEValues)
	require.NotNil(t, got[0].AverageRPE)
	assert.Equal(t, 8.3, *got[0].AverageRPE)
	assert.True(t, got[0].HasData)

	assert.Empty(t, got[1].RPEValues)
	assert.Nil(t, got[1].AverageRPE)
	assert.Equal(t, 2, got[1].VideoCount)
	assert.True(t, got[1].HasData)

	none := ExerciseSummaries([]domain.Exercise{{ID: "ex9", Name: "Plank"}}, nil)
	assert.False(t, none[0].HasData)
}

func TestShareText(t *testing.T) {
	videos := []domain.VideoUpload{{ID: 1, ExerciseID: "ex1"}}
	got := ShareText("day-2", sampleExercises(), videos)

	want := "🏋️ Workout Summary - day-2\n" +
		"\n" +
		"Squat\n" +
		"week_2: 100kg (RPE: 7.5) | week_10: 110kg (RPE: 9)\n" +
		"📹 Videos: 1\n" +
		"\n" +
		"Row\n" +
		"week_1 (RPE: 8)"
	assert.Equal(t, want, got)
}

func TestShareTextWithoutData(t *testing.T) {
	exercises := []domain.Exercise{{ID: "ex1", Name: "Squat", Weeks: map[string]domain.WeekSlot{"week_1": {Weight: ptr("100kg")}}}}
	assert.Equal(t, "🏋️ Workout Summary - day-1\n\n"+NoDataText, ShareText("day-1", exercises, nil))
}
