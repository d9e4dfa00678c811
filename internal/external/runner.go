// Package external runs the helper scripts the service delegates to: the PDF
// plan parser, the video trimmer and the coach notifier.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const waitDelay = 2 * time.Second

// ErrEmptyCommand is returned by a Runner without a program to run.
var ErrEmptyCommand = errors.New("external command not configured")

// ProcessError is a helper process that exited with a non-zero status.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner spawns Command plus per-call arguments.
type Runner struct {
	Command []string
	Timeout time.Duration // zero means no limit beyond ctx
}

// NewScriptRunner runs script with the given interpreter, e.g. python3.
func NewScriptRunner(interpreter, script string, timeout time.Duration) Runner {
	cmd := []string{script}
	if interpreter != "" {
		cmd = append([]string{interpreter}, cmd...)
	}
	return Runner{Command: cmd, Timeout: timeout}
}

// Run executes the command. When input is non-nil it is JSON-encoded to stdin.
// Stdout is returned on success.
func (r Runner) Run(ctx context.Context, input any, args ...string) ([]byte, error) {
	if len(r.Command) == 0 || r.Command[0] == "" {
		return nil, ErrEmptyCommand
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := append(append([]string{}, r.Command[1:]...), args...)
	cmd := exec.CommandContext(ctx, r.Command[0], argv...)
	// Grandchildren may keep the output pipes open after a kill.
	cmd.WaitDelay = waitDelay

	if input != nil {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("encode stdin: %w", err)
		}
		cmd.Stdin = bytes.NewReader(payload)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", r.name(), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &ProcessError{
			Command:  r.name(),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return nil, fmt.Errorf("start %s: %w", r.name(), err)
}

func (r Runner) name() string {
	return strings.Join(r.Command, " ")
}
