// Package config provides configuration loading and management for dicomslicesto3d.
// It handles loading configuration from YAML files, applies environment
// overrides and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Offset is a translation preset in pixels
type Offset struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Loader parameters
	Loader struct {
		// Pattern is the glob a file name must match (case-insensitively) to be decoded as a slice
		Pattern string `yaml:"pattern"`
	} `yaml:"loader"`

	// Processing parameters for the 2D image chain
	Processing struct {
		// Variant is the default threshold variant
		Variant string `yaml:"variant"`

		// Threshold is the default cutoff in [0, 255]
		Threshold int `yaml:"threshold"`

		// KernelSize is the default side of the square structuring element
		KernelSize int `yaml:"kernelSize"`

		// Shape is the default annotation marker (circle or square)
		Shape string `yaml:"shape"`
	} `yaml:"processing"`

	// Translation parameters
	Translation struct {
		// Presets are the offsets offered by the interactive session
		Presets []Offset `yaml:"presets"`
	} `yaml:"translation"`

	// Output parameters
	Output struct {
		// Dir is where derived images are written
		Dir string `yaml:"dir"`

		// Save determines whether derived images are written at all
		Save bool `yaml:"save"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Loader.Pattern = "*.dcm"

	cfg.Processing.Variant = "binary"
	cfg.Processing.Threshold = 127
	cfg.Processing.KernelSize = 5
	cfg.Processing.Shape = "circle"

	cfg.Translation.Presets = []Offset{
		{X: 50, Y: 30},
		{X: -30, Y: 50},
		{X: 0, Y: 70},
		{X: 100, Y: -50},
	}

	cfg.Output.Dir = "."
	cfg.Output.Save = true
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file and then applies
// environment overrides. A .env file in the working directory is read first
// if present; variables already set in the environment take precedence.
// If the YAML file doesn't exist, the defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides scalar settings from DICOMSLICES_* variables
func applyEnv(cfg *Config) {
	cfg.Loader.Pattern = getEnv("DICOMSLICES_PATTERN", cfg.Loader.Pattern)
	cfg.Processing.Variant = getEnv("DICOMSLICES_VARIANT", cfg.Processing.Variant)
	cfg.Processing.Threshold = getEnvInt("DICOMSLICES_THRESHOLD", cfg.Processing.Threshold)
	cfg.Processing.KernelSize = getEnvInt("DICOMSLICES_KERNEL_SIZE", cfg.Processing.KernelSize)
	cfg.Processing.Shape = getEnv("DICOMSLICES_SHAPE", cfg.Processing.Shape)
	cfg.Output.Dir = getEnv("DICOMSLICES_OUTPUT_DIR", cfg.Output.Dir)
	cfg.Output.Save = getEnvBool("DICOMSLICES_SAVE", cfg.Output.Save)
	cfg.Output.Verbose = getEnvBool("DICOMSLICES_VERBOSE", cfg.Output.Verbose)
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
