package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults holds the resolved filesystem locations the CLI starts from.
// Everything else (source dir, staging base, bucket) comes from the
// config file these point at.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// LoadDefaults resolves the default paths, letting environment variables
// override the XDG-style locations:
//   - DROP2S3_CONFIG_PATH: config file (default ~/.config/drop2s3.toml)
//   - DROP2S3_HOME: data directory (default ~/.local/share/drop2s3)
//
// The log directory always lives under the data directory.
func LoadDefaults() (Defaults, error) {
	configPath := os.Getenv("DROP2S3_CONFIG_PATH")
	baseDir := os.Getenv("DROP2S3_HOME")

	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Defaults{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "drop2s3.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "drop2s3")
		}
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
