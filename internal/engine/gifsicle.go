package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Gifsicle is a verified handle to the gifsicle binary. It can only be
// obtained through Verify.
type Gifsicle struct {
	binary  string
	version string
}

var _ Engine = (*Gifsicle)(nil)

// Verify resolves binary on PATH and checks that it answers a version query.
func Verify(ctx context.Context, binary string) (*Gifsicle, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: binary %q not found", ErrUnavailable, binary)
	}

	out, err := exec.CommandContext(ctx, path, "--version").Output() //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %s --version: %v", ErrUnavailable, binary, err)
	}

	return &Gifsicle{
		binary:  path,
		version: firstLine(string(out)),
	}, nil
}

// Binary returns the resolved engine path.
func (g *Gifsicle) Binary() string {
	return g.binary
}

// Version returns the first line of the engine's version output.
func (g *Gifsicle) Version() string {
	return g.version
}

// Run executes the engine with a single merged output stream.
func (g *Gifsicle) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...) //nolint:gosec

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return -1, fmt.Errorf("start engine: %w", err)
	}

	scanDone := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || onLine == nil {
				continue
			}
			onLine(line)
		}
		err := scanner.Err()
		// Keep draining so the engine never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
		scanDone <- err
	}()

	waitErr := cmd.Wait()
	pw.Close()
	scanErr := <-scanDone

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, fmt.Errorf("engine interrupted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait engine: %w", waitErr)
	}
	if scanErr != nil {
		return 0, fmt.Errorf("scan engine output: %w", scanErr)
	}
	return 0, nil
}

// Info runs the engine's --info mode against path and returns its stdout.
func (g *Gifsicle) Info(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary, "--info", path) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("engine info interrupted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &FailureError{Op: "info", ExitCode: exitErr.ExitCode()}
		}
		return "", fmt.Errorf("engine info: %w", err)
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
