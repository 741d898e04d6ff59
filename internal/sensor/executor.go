package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs sensors with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills sensors after timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Read runs s once with req on stdin and parses its stdout as a Reading.
// A reading with Success false is returned as an error.
func (e *Executor) Read(ctx context.Context, s *Sensor, req *Request) (*Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Executable)
	cmd.Dir = s.Path
	// Children of a killed sensor may still hold stdout open.
	cmd.WaitDelay = time.Second

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("sensor %s timed out after %v", s.Manifest.Name, e.timeout)
	}

	if err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("sensor %s failed: %w, stderr: %s", s.Manifest.Name, err, stderr.String())
		}
		return nil, fmt.Errorf("sensor %s failed: %w", s.Manifest.Name, err)
	}

	var reading Reading
	if err := json.Unmarshal(stdout.Bytes(), &reading); err != nil {
		return nil, fmt.Errorf("failed to parse sensor reading: %w, stdout: %s", err, stdout.String())
	}
	if !reading.Success {
		return nil, fmt.Errorf("sensor %s: %s", s.Manifest.Name, reading.Error)
	}

	return &reading, nil
}
