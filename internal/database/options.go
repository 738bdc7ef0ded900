package database

import (
	"io/fs"

	"github.com/koustreak/rowcursor/internal/logger"
)

// Options are the engine-independent settings applied when a connection is
// opened.
type Options struct {
	Log *logger.Logger

	// MigrationsFS is read for MigrationsDir; nil means the OS filesystem.
	MigrationsFS  fs.FS
	MigrationsDir string
}

// Option configures Options.
type Option func(*Options)

// WithLogger sets the connection logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) { o.Log = l }
}

// WithMigrations applies the goose migrations found in dir of fsys before
// the connection is handed out.
func WithMigrations(fsys fs.FS, dir string) Option {
	return func(o *Options) {
		o.MigrationsFS = fsys
		o.MigrationsDir = dir
	}
}

// ApplyOptions folds opts over the defaults.
func ApplyOptions(opts ...Option) Options {
	o := Options{Log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	return o
}
