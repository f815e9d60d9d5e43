package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Run("env vars override everything", func(t *testing.T) {
		t.Setenv("DROP2S3_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("DROP2S3_HOME", "/custom/drop2s3")

		d, err := LoadDefaults()
		if err != nil {
			t.Fatalf("LoadDefaults() error = %v", err)
		}

		if d.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, "/custom/config.toml")
		}
		if d.BaseDir != "/custom/drop2s3" {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, "/custom/drop2s3")
		}
		if d.LogDir != "/custom/drop2s3/log" {
			t.Errorf("LogDir = %q, want %q", d.LogDir, "/custom/drop2s3/log")
		}
	})

	t.Run("falls back to home dir locations", func(t *testing.T) {
		t.Setenv("DROP2S3_CONFIG_PATH", "")
		t.Setenv("DROP2S3_HOME", "")

		d, err := LoadDefaults()
		if err != nil {
			t.Fatalf("LoadDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		if want := filepath.Join(homeDir, ".config", "drop2s3.toml"); d.ConfigPath != want {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, want)
		}
		wantBase := filepath.Join(homeDir, ".local", "share", "drop2s3")
		if d.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, wantBase)
		}
		if want := filepath.Join(wantBase, "log"); d.LogDir != want {
			t.Errorf("LogDir = %q, want %q", d.LogDir, want)
		}
	})
}
