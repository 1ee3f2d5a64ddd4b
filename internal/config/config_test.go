package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdman.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
document:
  program: rsync
  section: "1"
  version: 3.4.1
  prefix: /usr
css:
  style: manual
convert:
  workers: 4
  syntaxHighlight: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Document.Program != "rsync" {
		t.Errorf("Document.Program = %q", cfg.Document.Program)
	}
	if cfg.Document.Section != "1" {
		t.Errorf("Document.Section = %q", cfg.Document.Section)
	}
	if cfg.CSS.Style != "manual" {
		t.Errorf("CSS.Style = %q", cfg.CSS.Style)
	}
	if cfg.Convert.Workers != 4 || !cfg.Convert.SyntaxHighlight {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
}

func TestLoadConfig_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
document:
  program: rsync
  browser: chrome
`)

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("LoadConfig() error = %v, want ErrConfigParse", err)
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfig_EmptyName(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
		t.Errorf("LoadConfig(\"\") error = %v, want ErrEmptyConfigName", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults valid",
			mutate: func(c *Config) {},
		},
		{
			name: "program too long",
			mutate: func(c *Config) {
				c.Document.Program = strings.Repeat("x", MaxProgramLength+1)
			},
			wantErr: "document.program",
		},
		{
			name: "section with spaces",
			mutate: func(c *Config) {
				c.Document.Section = "1 extra"
			},
			wantErr: "document.section",
		},
		{
			name: "negative workers",
			mutate: func(c *Config) {
				c.Convert.Workers = -1
			},
			wantErr: "convert.workers",
		},
		{
			name: "too many workers",
			mutate: func(c *Config) {
				c.Convert.Workers = MaxWorkers + 1
			},
			wantErr: "convert.workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Document.Section != "1" {
		t.Errorf("default section = %q, want %q", cfg.Document.Section, "1")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}
