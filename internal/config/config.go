package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Output   OutputConfig   `mapstructure:"output"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// EngineConfig locates the compression engine
type EngineConfig struct {
	Binary string `mapstructure:"binary"`
}

// OutputConfig contains output and scratch locations
type OutputConfig struct {
	Directory   string `mapstructure:"directory"`
	ScratchRoot string `mapstructure:"scratch_root"`
}

// DefaultsConfig holds option values used when a flag is not given.
// Zero values for Lossy and Colors mean "not set".
type DefaultsConfig struct {
	OptimizationLevel int  `mapstructure:"optimization_level"`
	Lossy             int  `mapstructure:"lossy"`
	Colors            int  `mapstructure:"colors"`
	Unoptimize        bool `mapstructure:"unoptimize"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Binary: "gifsicle",
		},
		Output: OutputConfig{
			Directory:   os.TempDir(),
			ScratchRoot: "",
		},
		Defaults: DefaultsConfig{
			OptimizationLevel: 3,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	config := DefaultConfig()

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.gif-compressor")
		v.AddConfigPath("/etc/gif-compressor")
	}

	// Environment variables such as GIF_COMPRESSOR_ENGINE_BINARY
	v.SetEnvPrefix("GIF_COMPRESSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// bindEnvKeys makes env-only values visible to Unmarshal, which ignores
// keys viper has never seen.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"engine.binary",
		"output.directory",
		"output.scratch_root",
		"defaults.optimization_level",
		"defaults.lossy",
		"defaults.colors",
		"defaults.unoptimize",
		"logging.level",
		"logging.file_path",
		"logging.max_size",
		"logging.max_backups",
		"logging.max_age",
		"logging.compress",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = "gifsicle"
	}

	if c.Output.Directory == "" {
		c.Output.Directory = os.TempDir()
	}
	c.Output.Directory = expandPath(c.Output.Directory)
	if c.Output.ScratchRoot != "" {
		c.Output.ScratchRoot = expandPath(c.Output.ScratchRoot)
		if !isDir(c.Output.ScratchRoot) {
			return fmt.Errorf("scratch_root does not exist or is not a directory: %s", c.Output.ScratchRoot)
		}
	}

	if c.Defaults.OptimizationLevel == 0 {
		c.Defaults.OptimizationLevel = 3
	}
	if c.Defaults.OptimizationLevel < 1 || c.Defaults.OptimizationLevel > 3 {
		return fmt.Errorf("invalid defaults.optimization_level: %d (valid: 1-3)", c.Defaults.OptimizationLevel)
	}
	if c.Defaults.Lossy != 0 && (c.Defaults.Lossy < 20 || c.Defaults.Lossy > 200) {
		return fmt.Errorf("invalid defaults.lossy: %d (valid: 20-200, 0 for lossless)", c.Defaults.Lossy)
	}
	if c.Defaults.Colors != 0 && (c.Defaults.Colors < 2 || c.Defaults.Colors > 256) {
		return fmt.Errorf("invalid defaults.colors: %d (valid: 2-256, 0 to keep)", c.Defaults.Colors)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// Helper functions

func expandPath(path string) string {
	expanded := os.ExpandEnv(path)
	if strings.HasPrefix(expanded, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, expanded[1:])
		}
	}
	return expanded
}

func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}
