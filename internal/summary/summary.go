// Package summary derives the read-only views of a workout session: RPE
// aggregates, per-exercise recaps and the text shared with the coach.
package summary

import (
	"alcyxob/workout-tracker/internal/domain"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// NoDataText is the share text body when no exercise has a video or an RPE.
const NoDataText = "No workout data available"

// ExerciseSummary recaps one exercise of the selected day.
type ExerciseSummary struct {
	ExerciseID string    `json:"exerciseId"`
	Name       string    `json:"name"`
	SetsReps   string    `json:"setsReps"`
	RPEValues  []float64 `json:"rpeValues"`
	AverageRPE *float64  `json:"averageRpe,omitempty"`
	VideoCount int       `json:"videoCount"`
	HasData    bool      `json:"hasData"`
}

// hasRPE treats a zero RPE as not recorded.
func hasRPE(slot domain.WeekSlot) bool {
	return slot.RPE != nil && *slot.RPE != 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// rpeValues returns the recorded RPEs of e in natural week order.
func rpeValues(e domain.Exercise) []float64 {
	values := []float64{}
	for _, weekID := range SortWeekIDs(weekIDs(e)) {
		if slot := e.Weeks[weekID]; hasRPE(slot) {
			values = append(values, *slot.RPE)
		}
	}
	return values
}

// RPEAverage is the mean of every recorded RPE across all exercises and
// weeks, rounded to one decimal. ok is false when nothing was recorded.
func RPEAverage(exercises []domain.Exercise) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, e := range exercises {
		for _, v := range rpeValues(e) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return round1(sum / float64(n)), true
}

func videoCounts(videos []domain.VideoUpload) map[string]int {
	counts := make(map[string]int)
	for _, v := range videos {
		counts[v.ExerciseID]++
	}
	return counts
}

// ExerciseSummaries builds one recap per exercise, in plan order.
func ExerciseSummaries(exercises []domain.Exercise, videos []domain.VideoUpload) []ExerciseSummary {
	counts := videoCounts(videos)
	out := make([]ExerciseSummary, 0, len(exercises))
	for _, e := range exercises {
		s := ExerciseSummary{
			ExerciseID: e.ID,
			Name:       e.Name,
			SetsReps:   e.SetsReps,
			RPEValues:  rpeValues(e),
			VideoCount: counts[e.ID],
		}
		if len(s.RPEValues) > 0 {
			avg, _ := RPEAverage([]domain.Exercise{e})
			s.AverageRPE = &avg
		}
		s.HasData = s.VideoCount > 0 || len(s.RPEValues) > 0
		out = append(out, s)
	}
	return out
}

// ShareText renders the plain-text recap sent to the coach.
func ShareText(selectedDay string, exercises []domain.Exercise, videos []domain.VideoUpload) string {
	counts := videoCounts(videos)
	lines := []string{"🏋️ Workout Summary - " + selectedDay, ""}

	var blocks []string
	for _, e := range exercises {
		hasData := counts[e.ID] > 0
		for _, slot := range e.Weeks {
			if hasRPE(slot) {
				hasData = true
				break
			}
		}
		if !hasData {
			continue
		}

		block := e.Name
		if weeks := SortWeekIDs(weekIDs(e)); len(weeks) > 0 {
			parts := make([]string, 0, len(weeks))
			for _, weekID := range weeks {
				slot := e.Weeks[weekID]
				info := weekID
				if slot.Weight != nil && *slot.Weight != "" {
					info += ": " + *slot.Weight
				}
				if hasRPE(slot) {
					info += " (RPE: " + strconv.FormatFloat(*slot.RPE, 'f', -1, 64) + ")"
				}
				parts = append(parts, info)
			}
			block += "\n" + strings.Join(parts, " | ")
		}
		if n := counts[e.ID]; n > 0 {
			block += fmt.Sprintf("\n📹 Videos: %d", n)
		}
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		lines = append(lines, NoDataText)
	} else {
		lines = append(lines, strings.Join(blocks, "\n\n"))
	}
	return strings.Join(lines, "\n")
}

func weekIDs(e domain.Exercise) []string {
	ids := make([]string, 0, len(e.Weeks))
	for id := range e.Weeks {
		ids = append(ids, id)
	}
	return ids
}

// SortWeekIDs sorts in place in natural order, so "week_2" comes before
// "week_10", and returns the slice.
func SortWeekIDs(ids []string) []string {
	sort.SliceStable(ids, func(i, j int) bool {
		return naturalLess(ids[i], ids[j])
	})
	return ids
}

func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, restA := leadingNumber(a)
			nb, restB := leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingNumber(s string) (uint64, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		n = math.MaxUint64
	}
	return n, s[i:]
}
