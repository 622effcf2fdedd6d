package compressor

import (
	"fmt"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
)

// Option bounds enforced by Validate.
const (
	MinOptimizationLevel     = 1
	MaxOptimizationLevel     = 3
	DefaultOptimizationLevel = 3
	MinLossy                 = 20
	MaxLossy                 = 200
	MinColors                = 2
	MaxColors                = 256
	MinScale                 = 0.1
	MaxScale                 = 1.0
)

// Request holds the input path and compression options for one call.
// Nil option pointers mean "not set".
type Request struct {
	InputPath         string
	OptimizationLevel int
	Lossy             *int
	Colors            *int
	Scale             *float64
	ResizeWidth       *int
	ResizeHeight      *int
	Unoptimize        bool
}

// NewRequest returns a lossless request at the default optimization level.
func NewRequest(inputPath string) Request {
	return Request{
		InputPath:         inputPath,
		OptimizationLevel: DefaultOptimizationLevel,
	}
}

// Validate checks option bounds and that the input is an existing GIF file.
func (r Request) Validate() error {
	if r.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	format, err := imaging.FormatFromFilename(r.InputPath)
	if err != nil || format != imaging.GIF {
		return fmt.Errorf("input must be a GIF file: %s", r.InputPath)
	}
	info, err := os.Stat(r.InputPath)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory: %s", r.InputPath)
	}

	if r.OptimizationLevel < MinOptimizationLevel || r.OptimizationLevel > MaxOptimizationLevel {
		return fmt.Errorf("optimization level must be between %d and %d, got %d",
			MinOptimizationLevel, MaxOptimizationLevel, r.OptimizationLevel)
	}
	if r.Lossy != nil && (*r.Lossy < MinLossy || *r.Lossy > MaxLossy) {
		return fmt.Errorf("lossy compression must be between %d and %d, got %d", MinLossy, MaxLossy, *r.Lossy)
	}
	if r.Colors != nil && (*r.Colors < MinColors || *r.Colors > MaxColors) {
		return fmt.Errorf("colors must be between %d and %d, got %d", MinColors, MaxColors, *r.Colors)
	}
	// Written as a negated range so NaN is rejected.
	if r.Scale != nil && !(*r.Scale >= MinScale && *r.Scale <= MaxScale) {
		return fmt.Errorf("scale must be between %.1f and %.1f, got %v", MinScale, MaxScale, *r.Scale)
	}
	if r.ResizeWidth != nil && *r.ResizeWidth < 1 {
		return fmt.Errorf("resize width must be at least 1, got %d", *r.ResizeWidth)
	}
	if r.ResizeHeight != nil && *r.ResizeHeight < 1 {
		return fmt.Errorf("resize height must be at least 1, got %d", *r.ResizeHeight)
	}
	return nil
}

// Describe returns one human-readable line per effective option, in the
// order the engine receives them.
func (r Request) Describe() []string {
	lines := []string{fmt.Sprintf("Optimization level: %d", r.level())}
	if r.Unoptimize {
		lines = append(lines, "Unoptimizing before compression")
	}
	if r.Lossy != nil {
		lines = append(lines, fmt.Sprintf("Lossy compression: %d", *r.Lossy))
	} else {
		lines = append(lines, "Lossless compression")
	}
	if r.Colors != nil {
		lines = append(lines, fmt.Sprintf("Reducing to %d colors", *r.Colors))
	}
	switch {
	case r.ResizeWidth != nil:
		lines = append(lines, fmt.Sprintf("Resizing to width: %dpx", *r.ResizeWidth))
	case r.ResizeHeight != nil:
		lines = append(lines, fmt.Sprintf("Resizing to height: %dpx", *r.ResizeHeight))
	case r.Scale != nil:
		lines = append(lines, fmt.Sprintf("Scaling by: %sx", formatScale(*r.Scale)))
	}
	return lines
}

func (r Request) level() int {
	switch r.OptimizationLevel {
	case 1, 2:
		return r.OptimizationLevel
	default:
		return 3
	}
}

func formatScale(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
