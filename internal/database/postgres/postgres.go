// Package postgres implements database.Connection on a single native pgx
// connection. Statements are prepared on the server under generated names.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/database/sqldb"
	"github.com/koustreak/rowcursor/internal/errs"
	"github.com/koustreak/rowcursor/internal/logger"
)

// Conn is a database.Connection backed by *pgx.Conn.
// It is not safe for concurrent use.
type Conn struct {
	conn *pgx.Conn
	log  *logger.Logger

	version int64
	inTx    bool
	closed  bool
	stmts   map[*stmt]struct{}
}

var _ database.Connection = (*Conn)(nil)

// Open applies migrations when configured, then connects to the server
// described by cfg.
func Open(ctx context.Context, cfg *database.Config, opts ...database.Option) (*Conn, error) {
	o := database.ApplyOptions(opts...)

	connCfg, err := pgx.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}

	c := &Conn{log: o.Log, stmts: make(map[*stmt]struct{})}

	if o.MigrationsDir != "" {
		db := stdlib.OpenDB(*connCfg)
		v, err := sqldb.Migrate(ctx, db, "postgres", o.MigrationsFS, o.MigrationsDir, o.Log)
		_ = db.Close()
		if err != nil {
			return nil, err
		}
		c.version = v
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return nil, mapError(err, "failed to connect", errs.ErrKindConnectionFailed)
	}
	c.conn = conn

	c.log.With().Str("driver", "postgres").Str("host", connCfg.Host).Logger().Debug("connection opened")
	return c, nil
}

// MigrationVersion returns the schema version reached by the migrations
// applied at open time, or 0 when none were configured.
func (c *Conn) MigrationVersion() int64 { return c.version }

func (c *Conn) CreateStatement(ctx context.Context, query string) (database.Statement, error) {
	if c.closed {
		return nil, errs.New(errs.ErrKindState, "connection is closed")
	}

	name := "rc_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	sd, err := c.conn.Prepare(ctx, name, query)
	if err != nil {
		return nil, database.AsFormat(mapError(err, "failed to prepare statement", errs.ErrKindFormat))
	}

	params := len(sd.ParamOIDs)
	s := &stmt{Bindings: database.NewBindings(params), c: c, query: query, name: name, desc: sd}
	c.stmts[s] = struct{}{}
	c.log.DebugWith("statement prepared", map[string]any{"sql": query, "params": params, "name": name})
	return s, nil
}

func (c *Conn) Exec(ctx context.Context, query string) error {
	if c.closed {
		return errs.New(errs.ErrKindState, "connection is closed")
	}
	if _, err := c.conn.Exec(ctx, query); err != nil {
		return c.fail(mapError(err, "exec failed", errs.ErrKindQueryFailed), query)
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
	if _, err := c.conn.Exec(ctx, "BEGIN"); err != nil {
		return mapError(err, "begin failed", errs.ErrKindQueryFailed)
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
	if _, err := c.conn.Exec(ctx, verb); err != nil {
		return mapError(err, verb+" failed", errs.ErrKindQueryFailed)
	}
	c.inTx = false
	c.log.Debug(done)
	return nil
}

func (c *Conn) InTransaction() bool { return c.inTx }

// Close rolls back an open transaction, deallocates open statements and
// closes the connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	ctx := context.Background()

	var errList []error
	if c.inTx {
		if _, err := c.conn.Exec(ctx, "ROLLBACK"); err != nil {
			errList = append(errList, mapError(err, "rollback on close failed", errs.ErrKindQueryFailed))
		}
		c.inTx = false
	}
	for s := range c.stmts {
		errList = append(errList, s.Close())
	}
	c.closed = true
	if err := c.conn.Close(ctx); err != nil {
		errList = append(errList, mapError(err, "failed to close connection", errs.ErrKindConnectionFailed))
	}

	c.log.Debug("connection closed")
	return errors.Join(errList...)
}

func (c *Conn) fail(err error, query string) error {
	c.log.WarnWith("statement failed", err, map[string]any{
		"kind": errs.KindOf(err).String(),
		"sql":  query,
	})
	return err
}
