// internal/domain/training_plan.go
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlanData is the typed view of the parser output kept in
// WorkoutSession.WorkoutData. Unknown fields are ignored.
type PlanData struct {
	Pages []PlanPage `json:"pages"`
}

// PlanPage is one page of the uploaded PDF, i.e. one training day.
type PlanPage struct {
	PageNumber  int        `json:"pageNumber"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Exercises   []Exercise `json:"exercises"`
}

// DecodePlanData reads the pages out of a raw parser payload.
// An empty payload decodes to an empty plan.
func DecodePlanData(raw json.RawMessage) (PlanData, error) {
	var plan PlanData
	if len(raw) == 0 || string(raw) == "null" {
		return plan, nil
	}
	if err := json.Unmarshal(raw, &plan); err != nil {
		return PlanData{}, fmt.Errorf("decode plan data: %w", err)
	}
	return plan, nil
}

// Page returns the page with the given number.
func (p PlanData) Page(number int) (PlanPage, bool) {
	for _, page := range p.Pages {
		if page.PageNumber == number {
			return page, true
		}
	}
	return PlanPage{}, false
}

// DayID builds the identifier of the training day on a page.
func DayID(pageNumber int) string {
	return "day-" + strconv.Itoa(pageNumber)
}

// ParseDayID extracts the page number from a "day-<n>" identifier.
func ParseDayID(dayID string) (int, error) {
	prefix, num, ok := strings.Cut(dayID, "-")
	if !ok || prefix != "day" {
		return 0, fmt.Errorf("invalid day id %q", dayID)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid day id %q", dayID)
	}
	return n, nil
}
