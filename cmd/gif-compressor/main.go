package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gif-compressor-go/internal/compressor"
	"gif-compressor-go/internal/config"
	"gif-compressor-go/internal/engine"
	"gif-compressor-go/internal/exifmeta"
	"gif-compressor-go/internal/fileutil"
	"gif-compressor-go/internal/logger"
	"gif-compressor-go/internal/report"
	"gif-compressor-go/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	optimizationLevel int
	lossy             int
	colors            int
	scale             float64
	resizeWidth       int
	resizeHeight      int
	unoptimize        bool
	outputDir         string

	useExiftool bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "gif-compressor",
	Short: "Compress animated GIFs with gifsicle",
	Long: `gif-compressor re-encodes animated GIFs through gifsicle with a small set
of tunable options and reports before/after diagnostics.

Features:
- Optimization levels 1-3
- Optional lossy compression and color reduction
- Resize by width, height or scale factor
- Frame, dimension and color diagnostics for input and output`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// compressCmd compresses a single GIF.
var compressCmd = &cobra.Command{
	Use:   "compress <input.gif>",
	Short: "Compress a GIF file",
	Long: `Compresses the given GIF and writes the result to a uniquely named file in
the output directory. The output path is printed on stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompress(cmd, args[0])
	},
}

// inspectCmd prints the engine's report for a GIF.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.gif>",
	Short: "Show frames, dimensions and colors of a GIF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, args[0])
	},
}

// checkCmd verifies the engine is installed.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that gifsicle is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	addCompressFlags(compressCmd)
	inspectCmd.Flags().BoolVar(&useExiftool, "exiftool", false, "add exiftool metadata to the report")

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(checkCmd)
}

// addCompressFlags registers the compression options on cmd.
func addCompressFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&optimizationLevel, "optimization-level", "O", compressor.DefaultOptimizationLevel, "optimization level (1-3)")
	f.IntVar(&lossy, "lossy", 0, "lossy compression level (20-200), omit for lossless")
	f.IntVar(&colors, "colors", 0, "reduce to this many colors (2-256)")
	f.Float64Var(&scale, "scale", 0, "scale factor (0.1-1.0)")
	f.IntVar(&resizeWidth, "resize-width", 0, "resize to this width in pixels, overrides --scale")
	f.IntVar(&resizeHeight, "resize-height", 0, "resize to this height in pixels, overrides --scale")
	f.BoolVar(&unoptimize, "unoptimize", false, "unoptimize before compressing")
	f.StringVar(&outputDir, "output-dir", "", "directory for the compressed file (default from config)")
}

// runCompress verifies the engine, builds the request and runs it.
func runCompress(cmd *cobra.Command, input string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)

	req := buildRequest(cmd, cfg, input)
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gifsicle, err := verifyEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	dir := cfg.Output.Directory
	if outputDir != "" {
		dir = outputDir
	}
	c := compressor.New(gifsicle, log,
		compressor.WithOutputDir(dir),
		compressor.WithScratchRoot(cfg.Output.ScratchRoot),
	)

	res, err := c.Compress(ctx, req)
	if err != nil {
		return err
	}

	if !quiet {
		cmp := statistics.Comparison{
			InputSize:  res.InputSize,
			OutputSize: res.OutputSize,
			Reduction:  res.Reduction,
			Ratio:      res.Ratio,
			Input:      res.Input,
			Output:     res.Output,
		}
		fmt.Fprintln(os.Stderr, cmp.Render())
	}
	fmt.Println(res.OutputPath)
	return nil
}

// buildRequest merges flags over config defaults. Only flags the user set
// count as present.
func buildRequest(cmd *cobra.Command, cfg *config.Config, input string) compressor.Request {
	flags := cmd.Flags()
	req := compressor.NewRequest(input)

	req.OptimizationLevel = cfg.Defaults.OptimizationLevel
	if flags.Changed("optimization-level") {
		req.OptimizationLevel = optimizationLevel
	}

	req.Unoptimize = cfg.Defaults.Unoptimize
	if flags.Changed("unoptimize") {
		req.Unoptimize = unoptimize
	}

	if flags.Changed("lossy") {
		req.Lossy = intPtr(lossy)
	} else if cfg.Defaults.Lossy != 0 {
		req.Lossy = intPtr(cfg.Defaults.Lossy)
	}

	if flags.Changed("colors") {
		req.Colors = intPtr(colors)
	} else if cfg.Defaults.Colors != 0 {
		req.Colors = intPtr(cfg.Defaults.Colors)
	}

	if flags.Changed("scale") {
		s := scale
		req.Scale = &s
	}
	if flags.Changed("resize-width") {
		req.ResizeWidth = intPtr(resizeWidth)
	}
	if flags.Changed("resize-height") {
		req.ResizeHeight = intPtr(resizeHeight)
	}
	return req
}

// runInspect prints the engine report for a single file.
func runInspect(cmd *cobra.Command, path string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)

	size, err := fileutil.FileSize(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	gifsicle, err := verifyEngine(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	text, err := gifsicle.Info(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	var extra [][2]string
	if useExiftool {
		meta, err := exifmeta.Probe(path)
		if err != nil {
			logger.WithFileOperation(log, path, "inspect").Warnf("exiftool unavailable: %v", err)
		} else {
			extra = meta.Rows()
		}
	}

	fmt.Println(statistics.RenderReport(path, size, report.Parse(text), extra))
	return nil
}

// runCheck verifies the engine and prints its version.
func runCheck(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)

	gifsicle, err := verifyEngine(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", gifsicle.Version(), gifsicle.Binary())
	return nil
}

// verifyEngine is the one-time engine check every command runs before work.
func verifyEngine(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*engine.Gifsicle, error) {
	gifsicle, err := engine.Verify(ctx, cfg.Engine.Binary)
	if err != nil {
		return nil, err
	}
	logger.WithOperation(log, "setup").Infof("Gifsicle version: %s", gifsicle.Version())
	return gifsicle, nil
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.DefaultConfig()
	if cfg.Logging.Level != "" {
		loggerCfg.Level = cfg.Logging.Level
	}
	loggerCfg.FilePath = cfg.Logging.FilePath
	if cfg.Logging.MaxSize > 0 {
		loggerCfg.MaxSize = cfg.Logging.MaxSize
	}
	if cfg.Logging.MaxBackups > 0 {
		loggerCfg.MaxBackups = cfg.Logging.MaxBackups
	}
	if cfg.Logging.MaxAge > 0 {
		loggerCfg.MaxAge = cfg.Logging.MaxAge
	}
	loggerCfg.Compress = cfg.Logging.Compress
	loggerCfg.Console = !quiet

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

func intPtr(v int) *int {
	return &v
}

// exitCode maps engine failures onto the process exit status.
func exitCode(err error) int {
	var failure *engine.FailureError
	if errors.As(err, &failure) && failure.ExitCode > 0 {
		return failure.ExitCode
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
