// Package config loads and validates the capmon configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full capmon configuration, loaded from a YAML file.
// All fields except LostQueueCapacity are required.
type Config struct {
	// ScanDirectoryPath is the directory producers write capture files into.
	ScanDirectoryPath string `yaml:"scan_directory_path"`

	// CSVRestartDirectory is where restart trigger files are created.
	CSVRestartDirectory string `yaml:"csv_restart_directory"`

	// FileExtensionToScan filters directory entries (e.g. "pcap" or ".pcap").
	FileExtensionToScan string `yaml:"file_extension_to_scan"`

	// ScanIntervalSeconds is the sleep between scan cycles.
	ScanIntervalSeconds int `yaml:"scan_interval_seconds"`

	// LostTimeoutSeconds is the mtime staleness threshold for lost files.
	LostTimeoutSeconds int `yaml:"lost_timeout_seconds"`

	// StuckActiveFileTimeoutSeconds is the observation-duration threshold
	// for stuck files. Normally configured larger than LostTimeoutSeconds.
	StuckActiveFileTimeoutSeconds int `yaml:"stuck_active_file_timeout_seconds"`

	// LostQueueCapacity bounds the lost-file queue. Optional; zero means
	// the queue package default.
	LostQueueCapacity int `yaml:"lost_queue_capacity"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every required field is present and sane.
func (c *Config) Validate() error {
	var errs []error

	if c.ScanDirectoryPath == "" {
		errs = append(errs, errors.New("scan_directory_path is required"))
	}
	if c.CSVRestartDirectory == "" {
		errs = append(errs, errors.New("csv_restart_directory is required"))
	}
	if c.FileExtensionToScan == "" {
		errs = append(errs, errors.New("file_extension_to_scan is required"))
	}
	if c.ScanIntervalSeconds <= 0 {
		errs = append(errs, errors.New("scan_interval_seconds must be positive"))
	}
	if c.LostTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("lost_timeout_seconds must be positive"))
	}
	if c.StuckActiveFileTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("stuck_active_file_timeout_seconds must be positive"))
	}
	if c.LostQueueCapacity < 0 {
		errs = append(errs, errors.New("lost_queue_capacity must not be negative"))
	}

	return errors.Join(errs...)
}

// ScanInterval returns the scan interval as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSeconds) * time.Second
}

// LostTimeout returns the lost threshold as a duration.
func (c *Config) LostTimeout() time.Duration {
	return time.Duration(c.LostTimeoutSeconds) * time.Second
}

// StuckActiveTimeout returns the stuck threshold as a duration.
func (c *Config) StuckActiveTimeout() time.Duration {
	return time.Duration(c.StuckActiveFileTimeoutSeconds) * time.Second
}
