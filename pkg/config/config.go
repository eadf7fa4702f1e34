// Package config provides run-configuration file support for sapaudit.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the persistent run configuration, loadable from sapaudit.yaml
// so recurring monthly runs do not need a wall of flags.
type Config struct {
	InputDir string        `yaml:"input_dir"`
	RefData  string        `yaml:"refdata"`
	GroupBy  string        `yaml:"group_by"` // date or ticket
	Merge    MergeConfig   `yaml:"merge"`
	Output   OutputConfig  `yaml:"output"`
	Logging  LoggingConfig `yaml:"logging"`
}

// MergeConfig tunes the timeline merge reconciliation.
type MergeConfig struct {
	Tolerance int `yaml:"tolerance"`
}

// OutputConfig names the report files to produce. Empty entries are skipped.
type OutputConfig struct {
	Workbook string `yaml:"workbook"`
	HTML     string `yaml:"html"`
	CSV      string `yaml:"csv"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		InputDir: ".",
		GroupBy:  "date",
		Output: OutputConfig{
			Workbook: "sap_audit_report.xlsx",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, or returns defaults when the file does
// not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.GroupBy != "date" && cfg.GroupBy != "ticket" {
		return nil, fmt.Errorf("parse config: group_by must be date or ticket, got %q", cfg.GroupBy)
	}
	return cfg, nil
}

// Save writes configuration to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
