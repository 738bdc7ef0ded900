package sqldb

import (
	"context"
	"database/sql"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/koustreak/rowcursor/internal/errs"
	"github.com/koustreak/rowcursor/internal/logger"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending goose migration in dir and returns the
// resulting schema version. A nil fsys reads dir from the OS filesystem.
func Migrate(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string, log *logger.Logger) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(log)

	if err := goose.SetDialect(dialect); err != nil {
		return 0, errs.Wrap(errs.ErrKindInvalidInput, "unsupported migration dialect", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return 0, errs.Wrap(errs.ErrKindQueryFailed, "failed to run migrations", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindQueryFailed, "failed to read migration version", err)
	}
	log.With().Str("dir", dir).Any("version", version).Logger().Debug("migrations applied")
	return version, nil
}
