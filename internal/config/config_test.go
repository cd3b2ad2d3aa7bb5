package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/perryfier/internal/assets"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.AssetSource != assets.SourceEmbedded {
		t.Errorf("AssetSource: got %q, want embedded", cfg.AssetSource)
	}
	if cfg.Sprite != assets.DefaultSprite {
		t.Errorf("Sprite: got %q, want %q", cfg.Sprite, assets.DefaultSprite)
	}
	if cfg.AssetPath != "" || cfg.OutputDir != "" {
		t.Errorf("paths should default to empty, got %q and %q", cfg.AssetPath, cfg.OutputDir)
	}
	if cfg.Debug() {
		t.Error("debug should be off by default")
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "debug",
			environ: map[string]string{"PERRYFIER_LOG_LEVEL": "debug"},
			check: func(t *testing.T, cfg Config) {
				if !cfg.Debug() {
					t.Error("Debug should be true")
				}
			},
		},
		{
			name: "archive source",
			environ: map[string]string{
				"PERRYFIER_ASSET_SOURCE": "archive",
				"PERRYFIER_ASSET_PATH":   "/opt/perry/plugin.zip",
				"PERRYFIER_SPRITE":       "img/hat.png",
				"PERRYFIER_OUTPUT_DIR":   "/tmp/out",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.AssetSource != assets.SourceArchive || cfg.AssetPath != "/opt/perry/plugin.zip" {
					t.Errorf("got source %q path %q", cfg.AssetSource, cfg.AssetPath)
				}
				if cfg.Sprite != "img/hat.png" || cfg.OutputDir != "/tmp/out" {
					t.Errorf("got sprite %q output %q", cfg.Sprite, cfg.OutputDir)
				}
			},
		},
		{
			name:    "unknown log level",
			environ: map[string]string{"PERRYFIER_LOG_LEVEL": "trace"},
			wantErr: "invalid log level",
		},
		{
			name:    "unknown asset source",
			environ: map[string]string{"PERRYFIER_ASSET_SOURCE": "s3"},
			wantErr: "invalid asset source",
		},
		{
			name:    "dir without path",
			environ: map[string]string{"PERRYFIER_ASSET_SOURCE": "dir"},
			wantErr: "requires PERRYFIER_ASSET_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("got error %v, want one containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFrom failed: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PERRYFIER_LOG_LEVEL", "debug")
	t.Setenv("PERRYFIER_OUTPUT_DIR", "/var/perry")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug() || cfg.OutputDir != "/var/perry" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PERRYFIER_TEST_DOTENV=from-file\nPERRYFIER_TEST_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PERRYFIER_TEST_DOTENV", "")
	os.Unsetenv("PERRYFIER_TEST_DOTENV")
	t.Setenv("PERRYFIER_TEST_DOTENV_SET", "from-env")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv("PERRYFIER_TEST_DOTENV"); got != "from-file" {
		t.Errorf("unset variable: got %q, want from-file", got)
	}
	if got := os.Getenv("PERRYFIER_TEST_DOTENV_SET"); got != "from-env" {
		t.Errorf("existing variable overwritten: got %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
