package external

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"log"
	"strings"
)

// CoachPayload is written as JSON to the notifier's stdin.
type CoachPayload struct {
	Session *domain.WorkoutSession `json:"session"`
	Videos  []domain.VideoUpload   `json:"videos"`
	Text    string                 `json:"text"`
}

// CoachNotifier delivers a session summary to the coach.
type CoachNotifier interface {
	Send(ctx context.Context, payload CoachPayload) error
}

type scriptCoachNotifier struct {
	runner Runner
}

func NewCoachNotifier(runner Runner) CoachNotifier {
	return &scriptCoachNotifier{runner: runner}
}

func (n *scriptCoachNotifier) Send(ctx context.Context, payload CoachPayload) error {
	out, err := n.runner.Run(ctx, payload)
	if err != nil {
		return err
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		log.Printf("INFO: Coach notifier: %s", msg)
	}
	return nil
}
