package compressor

import (
	"context"
	"errors"
	"time"

	"gif-compressor-go/internal/report"
)

var (
	// ErrDegenerateInput is returned for a zero-byte input, for which
	// reduction and ratio are undefined.
	ErrDegenerateInput = errors.New("degenerate input: file is empty")

	// ErrEmptyOutput is returned when the engine succeeds but writes an
	// empty file.
	ErrEmptyOutput = errors.New("engine produced an empty output file")
)

// Result describes one completed compression.
type Result struct {
	OutputPath string
	InputSize  int64
	OutputSize int64
	Reduction  float64
	Ratio      float64
	Input      report.Report
	Output     report.Report
	Command    []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Compressor defines the interface for GIF compression.
type Compressor interface {
	// Compress runs one request to completion and returns the durable
	// output together with before/after diagnostics.
	Compress(ctx context.Context, req Request) (*Result, error)
}

// Savings returns the size reduction in percent and the compression ratio.
func Savings(inputSize, outputSize int64) (reduction, ratio float64, err error) {
	if inputSize <= 0 {
		return 0, 0, ErrDegenerateInput
	}
	if outputSize <= 0 {
		return 0, 0, ErrEmptyOutput
	}
	reduction = float64(inputSize-outputSize) / float64(inputSize) * 100
	ratio = float64(inputSize) / float64(outputSize)
	return reduction, ratio, nil
}
