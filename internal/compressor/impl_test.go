package compressor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gif-compressor-go/internal/engine"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	lines      []string
	exitCode   int
	runErr     error
	outputSize int
	infoText   map[string]string
	infoErr    error

	runCalls  int
	args      [][]string
	infoCalls []string
}

func (f *fakeEngine) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	f.runCalls++
	f.args = append(f.args, append([]string(nil), args...))
	for _, line := range f.lines {
		onLine(line)
	}
	if f.runErr != nil {
		return -1, f.runErr
	}
	for i, a := range args {
		if a == OutputFlag && i+1 < len(args) {
			if err := os.WriteFile(args[i+1], make([]byte, f.outputSize), 0644); err != nil {
				return -1, err
			}
		}
	}
	return f.exitCode, nil
}

func (f *fakeEngine) Info(ctx context.Context, path string) (string, error) {
	f.infoCalls = append(f.infoCalls, path)
	if f.infoErr != nil {
		return "", f.infoErr
	}
	if strings.HasSuffix(path, scratchFileName) {
		return f.infoText["output"], nil
	}
	return f.infoText["input"], nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type harness struct {
	scratch string
	output  string
	input   string
	lines   []string
}

func newHarness(t *testing.T, inputSize int) *harness {
	t.Helper()
	h := &harness{
		scratch: t.TempDir(),
		output:  t.TempDir(),
	}
	h.input = writeGIF(t, t.TempDir(), inputSize)
	return h
}

func (h *harness) compressor(eng engine.Engine) *GifsicleCompressor {
	return New(eng, quietLogger(),
		WithOutputDir(h.output),
		WithScratchRoot(h.scratch),
		WithLogSink(func(line string) { h.lines = append(h.lines, line) }),
	)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompressSuccess(t *testing.T) {
	h := newHarness(t, 1000000)
	eng := &fakeEngine{
		lines:      []string{"optimizing frame 1", "optimizing frame 2"},
		outputSize: 250000,
		infoText: map[string]string{
			"input":  "* anim.gif 800x600 3 images\n  + image #0\n  + image #1\n  + image #2\n16 colors\n",
			"output": "* compressed.gif 400x300 3 images\n  + image #0\n  + image #1\n  + image #2\n",
		},
	}

	req := NewRequest(h.input)
	req.Lossy = intPtr(80)
	req.Colors = intPtr(128)

	res, err := h.compressor(eng).Compress(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1000000), res.InputSize)
	assert.Equal(t, int64(250000), res.OutputSize)
	assert.InDelta(t, 75.0, res.Reduction, 1e-9)
	assert.InDelta(t, 4.0, res.Ratio, 1e-9)

	require.NotNil(t, res.Input.Width)
	assert.Equal(t, 800, *res.Input.Width)
	assert.Equal(t, 600, *res.Input.Height)
	assert.Equal(t, 3, *res.Input.Frames)
	assert.Equal(t, 16, *res.Input.Colors)
	require.NotNil(t, res.Output.Width)
	assert.Equal(t, 400, *res.Output.Width)
	assert.Nil(t, res.Output.Colors)

	assert.Equal(t, []string{"optimizing frame 1", "optimizing frame 2"}, h.lines)
	require.Len(t, eng.args, 1)
	args := eng.args[0]
	assert.Equal(t, []string{"-O3", "--lossy=80", "--colors", "128", h.input, "-o"}, args[:6])
	assert.Equal(t, res.Command, args)
	assert.Len(t, eng.infoCalls, 2)

	assert.Equal(t, h.output, filepath.Dir(res.OutputPath))
	assert.True(t, strings.HasPrefix(filepath.Base(res.OutputPath), "compressed-"))
	assert.Equal(t, ".gif", filepath.Ext(res.OutputPath))
	info, err := os.Stat(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), info.Size())

	assertDirEmpty(t, h.scratch)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestCompressUniqueOutputNames(t *testing.T) {
	h := newHarness(t, 100)
	eng := &fakeEngine{outputSize: 50}
	c := h.compressor(eng)

	first, err := c.Compress(context.Background(), NewRequest(h.input))
	require.NoError(t, err)
	second, err := c.Compress(context.Background(), NewRequest(h.input))
	require.NoError(t, err)

	assert.NotEqual(t, first.OutputPath, second.OutputPath)
}

func TestCompressEngineFailure(t *testing.T) {
	h := newHarness(t, 1000)
	eng := &fakeEngine{exitCode: 7, outputSize: 10, lines: []string{"gifsicle: read error"}}

	res, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	require.Error(t, err)
	assert.Nil(t, res)

	var failure *engine.FailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 7, failure.ExitCode)
	assert.Equal(t, "compress", failure.Op)

	assert.Equal(t, []string{"gifsicle: read error"}, h.lines)
	assertDirEmpty(t, h.scratch)
	assertDirEmpty(t, h.output)
}

func TestCompressRunError(t *testing.T) {
	h := newHarness(t, 1000)
	eng := &fakeEngine{runErr: errors.New("exec format error")}

	_, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec format error")
	assertDirEmpty(t, h.scratch)
}

func TestCompressCancelled(t *testing.T) {
	h := newHarness(t, 1000)
	eng := &fakeEngine{runErr: fmt.Errorf("engine interrupted: %w", context.Canceled)}

	_, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var failure *engine.FailureError
	assert.False(t, errors.As(err, &failure))
	assertDirEmpty(t, h.scratch)
	assertDirEmpty(t, h.output)
}

func TestCompressDegenerateInput(t *testing.T) {
	h := newHarness(t, 0)
	eng := &fakeEngine{outputSize: 10}

	_, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateInput)
	assert.Zero(t, eng.runCalls)
	assertDirEmpty(t, h.scratch)
}

func TestCompressEmptyOutput(t *testing.T) {
	h := newHarness(t, 1000)
	eng := &fakeEngine{outputSize: 0}

	_, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	assert.ErrorIs(t, err, ErrEmptyOutput)
	assertDirEmpty(t, h.scratch)
	assertDirEmpty(t, h.output)
}

func TestCompressInfoFailureDegradesReport(t *testing.T) {
	h := newHarness(t, 1000)
	eng := &fakeEngine{outputSize: 500, infoErr: &engine.FailureError{Op: "info", ExitCode: 1}}

	res, err := h.compressor(eng).Compress(context.Background(), NewRequest(h.input))
	require.NoError(t, err)
	assert.True(t, res.Input.Empty())
	assert.True(t, res.Output.Empty())
	assert.InDelta(t, 50.0, res.Reduction, 1e-9)
	assert.InDelta(t, 2.0, res.Ratio, 1e-9)
}

func TestCompressMissingInput(t *testing.T) {
	h := newHarness(t, 10)
	eng := &fakeEngine{}

	_, err := h.compressor(eng).Compress(context.Background(), NewRequest(filepath.Join(h.scratch, "gone.gif")))
	require.Error(t, err)
	assert.Zero(t, eng.runCalls)
}

func TestDefaultLogSinkUsesLogger(t *testing.T) {
	h := newHarness(t, 100)
	var buf strings.Builder
	log := logrus.New()
	log.SetOutput(&buf)

	c := New(&fakeEngine{outputSize: 10, lines: []string{"engine says hi"}}, log,
		WithOutputDir(h.output), WithScratchRoot(h.scratch))
	_, err := c.Compress(context.Background(), NewRequest(h.input))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "engine says hi")
	assert.Contains(t, buf.String(), "source=engine")
}

func TestSavings(t *testing.T) {
	reduction, ratio, err := Savings(1000000, 250000)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, reduction, 1e-9)
	assert.InDelta(t, 4.0, ratio, 1e-9)

	reduction, ratio, err = Savings(100, 200)
	require.NoError(t, err)
	assert.InDelta(t, -100.0, reduction, 1e-9)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	_, _, err = Savings(0, 10)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, _, err = Savings(10, 0)
	assert.ErrorIs(t, err, ErrEmptyOutput)
}
