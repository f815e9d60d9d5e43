// Package config reads and writes the drop2s3 TOML configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for drop2s3.
type Config struct {
	// SourceDir is the camera uploads folder, continuously populated by
	// the sync client. Treated as read-only input except by clean.
	SourceDir string `toml:"source_dir"`

	// StagingBase is the root of the local staging layout; the per-bucket
	// tree underneath mirrors the bucket layout exactly.
	StagingBase string `toml:"staging_base"`

	LogDir string `toml:"log_dir"`

	// Device is the default --device value, e.g. "iPhone6s".
	Device string `toml:"device,omitempty"`

	AWS        AWSConfig        `toml:"aws"`
	Extensions ExtensionsConfig `toml:"extensions"`
	Sync       SyncConfig       `toml:"sync"`
	Notify     NotifyConfig     `toml:"notify"`
}

// AWSConfig selects which shared-config profile and region the S3 client
// uses. Credentials themselves resolve through the SDK's standard chain.
type AWSConfig struct {
	Profile string `toml:"profile,omitempty"`
	Region  string `toml:"region,omitempty"`
}

// ExtensionsConfig maps media kinds to the single file extension each
// run operates on. This is an explicit policy, not a directory scan.
type ExtensionsConfig struct {
	Image string `toml:"image"`
	Video string `toml:"video"`
}

// SyncConfig holds sync tuning. Exclude lists extra basenames the
// planner skips; OS metadata files are always skipped.
type SyncConfig struct {
	Exclude []string `toml:"exclude,omitempty"`
}

// NotifyConfig enables SNS notification of workflow results when a
// topic ARN is set. Empty means no notifications.
type NotifyConfig struct {
	SNSTopic string `toml:"sns_topic,omitempty"`
	Profile  string `toml:"profile,omitempty"`
	Region   string `toml:"region,omitempty"`
}

// NewConfig creates a new Config with defaults derived from the user's
// home directory.
func NewConfig(homeDir, logDir string) *Config {
	return &Config{
		SourceDir:   filepath.Join(homeDir, "Dropbox", "Camera Uploads"),
		StagingBase: filepath.Join(homeDir, "Pictures", "s3"),
		LogDir:      logDir,
		Extensions:  ExtensionsConfig{Image: "jpg", Video: "mov"},
	}
}

// Normalize fills in defaults for fields a hand-edited config file may
// have left empty.
func (c *Config) Normalize() {
	if c.Extensions.Image == "" {
		c.Extensions.Image = "jpg"
	}
	if c.Extensions.Video == "" {
		c.Extensions.Video = "mov"
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
