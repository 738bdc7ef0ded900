// Package sqlite opens database.Connection values backed by the pure Go
// modernc.org/sqlite engine.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" with database/sql

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/database/sqldb"
)

const defaultPath = ":memory:"

// Dialect is the sqldb.Dialect for SQLite.
type Dialect struct{}

var (
	_ sqldb.Dialect  = Dialect{}
	_ sqldb.Rewriter = Dialect{}
)

func (Dialect) DriverName() string   { return "sqlite" }
func (Dialect) GooseDialect() string { return "sqlite3" }

// Validate compiles query under EXPLAIN so syntax and schema errors surface
// when the statement is created. Nothing is executed.
func (Dialect) Validate(ctx context.Context, conn *sql.Conn, query string, params int) error {
	if isScript(query) {
		return nil
	}
	args := make([]any, params)
	rows, err := conn.QueryContext(ctx, "EXPLAIN "+query, args...)
	if err != nil {
		return err
	}
	return rows.Close()
}

func (Dialect) MapError(err error, msg string) error { return mapError(err, msg) }

// TextType is always false: SQLite types each cell on its own, so a BLOB
// stored in a TEXT column is still a BLOB.
func (Dialect) TextType(string) bool { return false }

// temporalTypes are the declared types whose TEXT cells the driver parses
// into time.Time.
var temporalTypes = map[string]bool{"DATE": true, "DATETIME": true, "TIMESTAMP": true}

// Rewrite wraps a query whose result has DATE, DATETIME or TIMESTAMP
// columns so those columns lose their declared type. A unary plus keeps the
// stored value and storage class, so the text reads back as written. Other
// queries are returned unchanged.
func (Dialect) Rewrite(ctx context.Context, conn *sql.Conn, query string, params int) (string, error) {
	body := strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
	if isScript(query) || !isSelect(body) {
		return query, nil
	}

	rows, err := conn.QueryContext(ctx, body, make([]any, params)...)
	if err != nil {
		return "", err
	}
	names, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return "", err
	}
	types, err := rows.ColumnTypes()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	temporal := make([]bool, len(types))
	wrap := false
	for i, ct := range types {
		temporal[i] = temporalTypes[strings.ToUpper(ct.DatabaseTypeName())]
		wrap = wrap || temporal[i]
	}
	if !wrap {
		return query, nil
	}
	return wrapTemporal(body, names, temporal), nil
}

// wrapTemporal selects every column of body by position, in order and
// under its original name, with a unary plus on the temporal ones.
func wrapTemporal(body string, names []string, temporal []bool) string {
	var b strings.Builder
	b.WriteString("WITH rc_src(")
	for i := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "c%d", i)
	}
	b.WriteString(") AS (\n")
	b.WriteString(body)
	b.WriteString("\n) SELECT ")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		if temporal[i] {
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "c%d AS %s", i, database.QuoteIdent(name))
	}
	b.WriteString(" FROM rc_src")
	return b.String()
}

func isSelect(body string) bool {
	head := body
	if i := strings.IndexFunc(head, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' }); i >= 0 {
		head = head[:i]
	}
	return strings.EqualFold(head, "SELECT") || strings.EqualFold(head, "VALUES")
}

// Open opens the database described by cfg on a single connection.
func Open(ctx context.Context, cfg *database.Config, opts ...database.Option) (*sqldb.Conn, error) {
	return sqldb.Open(ctx, Dialect{}, DSN(cfg), opts...)
}

// DSN builds a modernc.org/sqlite data source name from cfg.
// Example: "app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
func DSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	fk := 0
	if cfg.ForeignKeys {
		fk = 1
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(%d)",
		path, cfg.BusyTimeout.Milliseconds(), fk)
}

// isScript reports whether query holds more than one statement. EXPLAIN only
// covers the first one, so scripts skip validation.
func isScript(query string) bool {
	body := strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
	return strings.Contains(body, ";")
}
