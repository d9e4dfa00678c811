package external

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"encoding/json"
	"fmt"
)

// PlanParser extracts training days and exercises from a plan PDF.
type PlanParser interface {
	// Parse returns the typed plan and the raw payload to keep with the session.
	Parse(ctx context.Context, pdfPath string) (domain.PlanData, json.RawMessage, error)
}

type scriptPlanParser struct {
	runner Runner
}

// NewPlanParser runs `<runner> <pdfPath>` and reads `{"pages": [...]}` from stdout.
func NewPlanParser(runner Runner) PlanParser {
	return &scriptPlanParser{runner: runner}
}

func (p *scriptPlanParser) Parse(ctx context.Context, pdfPath string) (domain.PlanData, json.RawMessage, error) {
	out, err := p.runner.Run(ctx, nil, pdfPath)
	if err != nil {
		return domain.PlanData{}, nil, err
	}
	if !json.Valid(out) {
		return domain.PlanData{}, nil, fmt.Errorf("plan parser returned invalid JSON")
	}
	raw := json.RawMessage(out)
	plan, err := domain.DecodePlanData(raw)
	if err != nil {
		return domain.PlanData{}, nil, err
	}
	return plan, raw, nil
}
