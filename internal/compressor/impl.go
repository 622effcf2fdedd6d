package compressor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gif-compressor-go/internal/engine"
	"gif-compressor-go/internal/fileutil"
	"gif-compressor-go/internal/logger"
	"gif-compressor-go/internal/report"
	"gif-compressor-go/internal/statistics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const scratchFileName = "compressed.gif"

// GifsicleCompressor drives the external engine for one request at a time.
type GifsicleCompressor struct {
	engine      engine.Engine
	logger      *logrus.Logger
	outputDir   string
	scratchRoot string
	logSink     func(string)
}

// Option configures a GifsicleCompressor.
type Option func(*GifsicleCompressor)

// WithOutputDir sets where durable results are written. Defaults to the
// system temp directory.
func WithOutputDir(dir string) Option {
	return func(c *GifsicleCompressor) {
		c.outputDir = dir
	}
}

// WithScratchRoot sets the parent of per-call scratch directories.
func WithScratchRoot(dir string) Option {
	return func(c *GifsicleCompressor) {
		c.scratchRoot = dir
	}
}

// WithLogSink receives every engine output line instead of the logger.
func WithLogSink(sink func(line string)) Option {
	return func(c *GifsicleCompressor) {
		c.logSink = sink
	}
}

// New creates a compressor bound to a verified engine.
func New(eng engine.Engine, log *logrus.Logger, opts ...Option) *GifsicleCompressor {
	c := &GifsicleCompressor{
		engine: eng,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.outputDir == "" {
		c.outputDir = os.TempDir()
	}
	if c.logSink == nil {
		c.logSink = func(line string) {
			c.logger.WithField("source", "engine").Info(line)
		}
	}
	return c
}

// Compress runs the info, compress, info sequence for req. The scratch
// directory is removed on every return path.
func (c *GifsicleCompressor) Compress(ctx context.Context, req Request) (*Result, error) {
	log := logger.WithFileOperation(c.logger, req.InputPath, "compress")
	res := &Result{StartedAt: time.Now()}

	log.Info("GIF compression starting")

	inputSize, err := fileutil.FileSize(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if inputSize == 0 {
		return nil, fmt.Errorf("%s: %w", req.InputPath, ErrDegenerateInput)
	}
	res.InputSize = inputSize
	log.Infof("Input size: %s", statistics.FormatSize(inputSize))

	res.Input = c.inspect(ctx, req.InputPath, log)
	if !res.Input.Empty() {
		log.Infof("Frames: %s | Dimensions: %s | Colors: %s",
			res.Input.FramesString(), res.Input.Dimensions(), res.Input.ColorsString())
	}

	scratchDir, err := os.MkdirTemp(c.scratchRoot, "gif-compress-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			log.Warnf("Could not remove scratch dir %s: %v", scratchDir, err)
		}
	}()

	scratchOut := filepath.Join(scratchDir, scratchFileName)
	res.Command = BuildArgs(req, scratchOut)
	for _, line := range req.Describe() {
		log.Info(line)
	}
	log.Infof("Command: %s", strings.Join(res.Command, " "))

	code, err := c.engine.Run(ctx, res.Command, c.logSink)
	if err != nil {
		return nil, fmt.Errorf("run engine: %w", err)
	}
	if code != 0 {
		return nil, &engine.FailureError{Op: "compress", ExitCode: code}
	}

	outputSize, err := fileutil.FileSize(scratchOut)
	if err != nil {
		return nil, fmt.Errorf("stat engine output: %w", err)
	}
	res.OutputSize = outputSize

	res.Reduction, res.Ratio, err = Savings(inputSize, outputSize)
	if err != nil {
		return nil, err
	}

	log.Info("Compression complete")
	log.Infof("Output size: %s", statistics.FormatSize(outputSize))
	log.Infof("Size reduction: %.1f%%", res.Reduction)
	log.Infof("Compression ratio: %.2fx", res.Ratio)

	res.Output = c.inspect(ctx, scratchOut, log)
	if !res.Output.Empty() {
		log.Infof("Output frames: %s | Output dimensions: %s | Output colors: %s",
			res.Output.FramesString(), res.Output.Dimensions(), res.Output.ColorsString())
	}

	finalPath := filepath.Join(c.outputDir, "compressed-"+uuid.NewString()+".gif")
	if err := fileutil.CopyFile(scratchOut, finalPath); err != nil {
		return nil, fmt.Errorf("copy result: %w", err)
	}
	res.OutputPath = finalPath
	res.FinishedAt = time.Now()

	log.WithField("output", finalPath).Info("Success")
	return res, nil
}

// inspect returns the engine report for path; failures degrade to an
// empty report.
func (c *GifsicleCompressor) inspect(ctx context.Context, path string, log *logrus.Entry) report.Report {
	text, err := c.engine.Info(ctx, path)
	if err != nil {
		log.Warnf("Could not get GIF info for %s: %v", path, err)
		return report.Report{}
	}
	return report.Parse(text)
}
