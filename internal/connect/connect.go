// Package connect opens the engine adapter selected by a database.Config.
package connect

import (
	"context"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/database/mysql"
	"github.com/koustreak/rowcursor/internal/database/postgres"
	"github.com/koustreak/rowcursor/internal/database/sqlite"
	"github.com/koustreak/rowcursor/internal/errs"
	"github.com/koustreak/rowcursor/internal/logger"
)

// Open validates cfg and opens one connection to the engine it names.
// Migrations from cfg.MigrationsDir are applied on the OS filesystem unless
// opts supply another source; opts are applied last.
func Open(ctx context.Context, cfg *database.Config, log *logger.Logger, opts ...database.Option) (database.Connection, error) {
	if cfg == nil {
		cfg = database.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	driver := cfg.EngineDriver()
	base := []database.Option{database.WithLogger(log.With().Str("driver", string(driver)).Logger())}
	if cfg.MigrationsDir != "" {
		base = append(base, database.WithMigrations(nil, cfg.MigrationsDir))
	}
	opts = append(base, opts...)

	// Typed nil pointers must not leak out as non-nil interfaces.
	switch driver {
	case database.DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case database.DriverMySQL:
		conn, err := mysql.Open(ctx, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case database.DriverPostgres:
		conn, err := postgres.Open(ctx, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown driver %q", driver)
	}
}

// Versioned is implemented by connections that ran migrations when opened.
type Versioned interface {
	MigrationVersion() int64
}

// MigrationVersion returns the schema version conn was migrated to, or 0 when
// the engine does not track it.
func MigrationVersion(conn database.Connection) int64 {
	if v, ok := conn.(Versioned); ok {
		return v.MigrationVersion()
	}
	return 0
}
