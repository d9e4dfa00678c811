package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"day-1", 1, false},
		{"day-12", 12, false},
		{"day-0", 0, true},
		{"day-", 0, true},
		{"week-2", 0, true},
		{"day2", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDayID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, DayID(got))
		})
	}
}

func TestDecodePlanData(t *testing.T) {
	raw := json.RawMessage(`{
		"pages": [
			{"pageNumber": 1, "title": "Giorno A", "exercises": [{"id": "ex1", "name": "Squat", "setsReps": "3x8", "weeks": {}}]},
			{"pageNumber": 2, "title": "Giorno B", "exercises": []}
		],
		"source": "precise"
	}`)

	plan, err := DecodePlanData(raw)
	require.NoError(t, err)
	require.Len(t, plan.Pages, 2)

	page, ok := plan.Page(1)
	require.True(t, ok)
	assert.Equal(t, "Giorno A", page.Title)
	require.Len(t, page.Exercises, 1)
	assert.Equal(t, "Squat", page.Exercises[0].Name)

	_, ok = plan.Page(5)
	assert.False(t, ok)
}

func TestDecodePlanDataEmptyAndInvalid(t *testing.T) {
	plan, err := DecodePlanData(nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Pages)

	plan, err = DecodePlanData(json.RawMessage("null"))
	require.NoError(t, err)
	assert.Empty(t, plan.Pages)

	_, err = DecodePlanData(json.RawMessage(`{"pages": "nope"}`))
	assert.Error(t, err)
}
