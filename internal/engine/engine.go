package engine

import (
	"context"
	"errors"
	"fmt"
)

// DefaultBinary is the engine looked up on PATH when none is configured.
const DefaultBinary = "gifsicle"

// ErrUnavailable is returned when the engine cannot be located or executed.
var ErrUnavailable = errors.New("compression engine unavailable")

// FailureError reports a non-zero engine exit status.
type FailureError struct {
	Op       string
	ExitCode int
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("engine %s failed with exit code %d", e.Op, e.ExitCode)
}

// Engine is the capability the compressor needs from the external tool.
type Engine interface {
	// Run launches the engine with args, forwarding every non-blank line of
	// its merged stdout/stderr to onLine as it arrives. The returned error is
	// reserved for launch and I/O failures; a non-zero exit is reported
	// through the exit code.
	Run(ctx context.Context, args []string, onLine func(string)) (int, error)

	// Info returns the engine's diagnostic report for path.
	Info(ctx context.Context, path string) (string, error)
}
