// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ironsheep/perryfier/internal/assets"
)

// Config holds every setting the bot reads at startup.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string `env:"PERRYFIER_LOG_LEVEL" envDefault:"info"`

	// AssetSource selects where resources such as the sprite are read from.
	AssetSource assets.Source `env:"PERRYFIER_ASSET_SOURCE" envDefault:"embedded"`

	// AssetPath is the directory root or archive path for the dir and
	// archive sources.
	AssetPath string `env:"PERRYFIER_ASSET_PATH"`

	// Sprite is the asset name of the overlay sprite.
	Sprite string `env:"PERRYFIER_SPRITE" envDefault:"res/img/perryhat.png"`

	// OutputDir receives composed images; empty keeps them in memory.
	OutputDir string `env:"PERRYFIER_OUTPUT_DIR"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads the configuration from environ instead of the process
// environment. Unset keys take their defaults.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv copies variables from a dotenv file into the process
// environment. Variables that are already set keep their values. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate checks field values and combinations.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("invalid log level %q (want info or debug)", c.LogLevel)
	}

	switch c.AssetSource {
	case assets.SourceEmbedded:
	case assets.SourceDir, assets.SourceArchive:
		if c.AssetPath == "" {
			return fmt.Errorf("asset source %q requires PERRYFIER_ASSET_PATH", c.AssetSource)
		}
	default:
		return fmt.Errorf("invalid asset source %q (want embedded, dir, or archive)", c.AssetSource)
	}

	if c.Sprite == "" {
		return errors.New("sprite name must not be empty")
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}
