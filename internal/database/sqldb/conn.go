package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
	"github.com/koustreak/rowcursor/internal/logger"
)

// Conn is a database.Connection pinned to one database/sql connection.
// It is not safe for concurrent use.
type Conn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
	log     *logger.Logger

	version int64
	inTx    bool
	closed  bool
	stmts   map[*stmt]struct{}
}

var _ database.Connection = (*Conn)(nil)

// Open opens dsn with the dialect's driver. See OpenDB.
func Open(ctx context.Context, d Dialect, dsn string, opts ...database.Option) (*Conn, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to open "+d.DriverName(), err)
	}
	c, err := OpenDB(ctx, d, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// OpenDB limits db to a single connection, applies migrations when
// configured and pins that connection. On success the Conn owns db.
func OpenDB(ctx context.Context, d Dialect, db *sql.DB, opts ...database.Option) (*Conn, error) {
	o := database.ApplyOptions(opts...)

	// One physical connection for the lifetime of the Conn; an in-memory
	// SQLite database lives exactly as long as it does.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	c := &Conn{db: db, dialect: d, log: o.Log, stmts: make(map[*stmt]struct{})}

	if err := db.PingContext(ctx); err != nil {
		return nil, c.mapError(err, "ping failed", errs.ErrKindConnectionFailed)
	}

	if o.MigrationsDir != "" {
		v, err := Migrate(ctx, db, d.GooseDialect(), o.MigrationsFS, o.MigrationsDir, o.Log)
		if err != nil {
			return nil, err
		}
		c.version = v
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, c.mapError(err, "failed to acquire connection", errs.ErrKindConnectionFailed)
	}
	c.conn = conn

	c.log.With().Str("driver", d.DriverName()).Logger().Debug("connection opened")
	return c, nil
}

// MigrationVersion returns the schema version reached by the migrations
// applied at open time, or 0 when none were configured.
func (c *Conn) MigrationVersion() int64 { return c.version }

func (c *Conn) CreateStatement(ctx context.Context, query string) (database.Statement, error) {
	if c.closed {
		return nil, errs.New(errs.ErrKindState, "connection is closed")
	}

	params := database.CountParams(query)
	if err := c.dialect.Validate(ctx, c.conn, query, params); err != nil {
		return nil, database.AsFormat(c.mapError(err, "invalid statement", errs.ErrKindFormat))
	}

	prepared := query
	if rw, ok := c.dialect.(Rewriter); ok {
		var err error
		if prepared, err = rw.Rewrite(ctx, c.conn, query, params); err != nil {
			return nil, database.AsFormat(c.mapError(err, "invalid statement", errs.ErrKindFormat))
		}
	}

	ps, err := c.conn.PrepareContext(ctx, prepared)
	if err != nil {
		return nil, database.AsFormat(c.mapError(err, "failed to prepare statement", errs.ErrKindFormat))
	}

	s := &stmt{Bindings: database.NewBindings(params), c: c, query: query, ps: ps}
	c.stmts[s] = struct{}{}
	c.log.With().Str("sql", query).Int("params", params).Logger().Debug("statement prepared")
	return s, nil
}

func (c *Conn) Exec(ctx context.Context, query string) error {
	if c.closed {
		return errs.New(errs.ErrKindState, "connection is closed")
	}
	if _, err := c.conn.ExecContext(ctx, query); err != nil {
		return c.fail(c.mapError(err, "exec failed", errs.ErrKindQueryFailed), query)
	}
	return nil
}

func (c *Conn) Begin(ctx context.Context) error {
	if c.closed {
		return errs.New(errs.ErrKindState, "connection is closed")
	}
	if c.inTx {
		return errs.New(errs.ErrKindState, "transaction already open")
	}
	if _, err := c.conn.ExecContext(ctx, "BEGIN"); err != nil {
		return c.mapError(err, "begin failed", errs.ErrKindQueryFailed)
	}
	c.inTx = true
	c.log.Debug("transaction begun")
	return nil
}

func (c *Conn) Commit(ctx context.Context) error {
	return c.finish(ctx, "COMMIT", "transaction committed")
}

func (c *Conn) Rollback(ctx context.Context) error {
	return c.finish(ctx, "ROLLBACK", "transaction rolled back")
}

func (c *Conn) finish(ctx context.Context, verb, done string) error {
	if c.closed {
		return errs.New(errs.ErrKindState, "connection is closed")
	}
	if !c.inTx {
		return errs.Newf(errs.ErrKindState, "%s without an open transaction", verb)
	}
	if _, err := c.conn.ExecContext(ctx, verb); err != nil {
		return c.mapError(err, verb+" failed", errs.ErrKindQueryFailed)
	}
	c.inTx = false
	c.log.Debug(done)
	return nil
}

func (c *Conn) InTransaction() bool { return c.inTx }

// Close finalizes open statements, rolls back an open transaction and
// releases the connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}

	var errList []error
	for s := range c.stmts {
		errList = append(errList, s.Close())
	}
	if c.inTx {
		if _, err := c.conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
			errList = append(errList, c.mapError(err, "rollback on close failed", errs.ErrKindQueryFailed))
		}
		c.inTx = false
	}
	c.closed = true
	errList = append(errList, c.conn.Close(), c.db.Close())

	c.log.Debug("connection closed")
	return errors.Join(errList...)
}

// mapError translates err, falling back to the dialect. fallback is used for
// errors nobody recognises.
func (c *Conn) mapError(err error, msg string, fallback errs.ErrKind) error {
	if err == nil {
		return nil
	}
	if e, ok := database.Passthrough(err); ok {
		return e
	}
	if e, ok := database.ContextErr(err, msg); ok {
		return e
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	if mapped := c.dialect.MapError(err, msg); mapped != nil {
		return mapped
	}
	return errs.Wrap(fallback, msg, err)
}

// fail logs an engine failure.
func (c *Conn) fail(err error, query string) error {
	c.log.WarnWith("statement failed", err, map[string]any{
		"kind": errs.KindOf(err).String(),
		"sql":  query,
	})
	return err
}
