// Package config loads songdata-cli settings from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tiger/songdata-validator/internal/tooling/validation"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = ".songdata-cli.yaml"

// ReportFormat selects how the report is written to stdout.
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
)

// Config holds every songdata-cli setting.
type Config struct {
	DataPath     string       `yaml:"data_path"`
	ReportFormat ReportFormat `yaml:"report_format"`
	// ReportPath, when set, also receives the JSON report.
	ReportPath string `yaml:"report_path"`
	LogLevel   string `yaml:"log_level"`
}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the zero-configuration settings.
func DefaultConfig() *Config {
	return &Config{
		DataPath:     validation.DefaultDataPath,
		ReportFormat: FormatText,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. The file must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// LoadOptional is Load, except a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("data_path must not be empty")
	}
	switch c.ReportFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported report_format %q (expected text|json)", c.ReportFormat)
	}
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			return nil
		}
	}
	return fmt.Errorf("unsupported log_level %q (expected %s)", c.LogLevel, strings.Join(ValidLogLevels, "|"))
}
