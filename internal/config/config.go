// Package config loads rowcursor settings from YAML with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
	"github.com/koustreak/rowcursor/internal/logger"
)

// Environment variables that override file values.
const (
	EnvDriver    = "ROWCURSOR_DRIVER"
	EnvDSN       = "ROWCURSOR_DSN"
	EnvDBPath    = "ROWCURSOR_DB_PATH"
	EnvLogLevel  = "ROWCURSOR_LOG_LEVEL"
	EnvLogFormat = "ROWCURSOR_LOG_FORMAT"
)

// Config is the top-level configuration file.
type Config struct {
	Database database.Config `yaml:"database"`
	Log      logger.Config   `yaml:"log"`
}

// Default returns an in-memory SQLite database and json logs at info level.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(),
		Log:      *logger.DefaultConfig(),
	}
}

// Load reads path over the defaults and then applies environment
// overrides. An empty path, or one that does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config "+path, err)
		default:
			if err := Parse(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg. Keys absent from data keep their current
// values; unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindFormat, "invalid config", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment variables reported by
// lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDriver); ok && v != "" {
		c.Database.Driver = database.Driver(strings.ToLower(v))
	}
	if v, ok := lookup(EnvDSN); ok {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error", "disabled", "off"}
	logFormats = []string{"json", "console"}
)

// Validate checks the database section and the log level and format.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("log level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("log format %q must be one of %s", c.Log.Format, strings.Join(logFormats, ", ")))
	}
	return nil
}
