// Package mysql opens database.Connection values backed by
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/database/sqldb"
)

const (
	defaultHost = "localhost"
	defaultPort = 3306
)

// Dialect is the sqldb.Dialect for MySQL.
type Dialect struct{}

var _ sqldb.Dialect = Dialect{}

func (Dialect) DriverName() string   { return "mysql" }
func (Dialect) GooseDialect() string { return "mysql" }

// Validate is a no-op: the driver prepares statements on the server, which
// rejects malformed SQL at creation time.
func (Dialect) Validate(context.Context, *sql.Conn, string, int) error { return nil }

func (Dialect) MapError(err error, msg string) error { return mapError(err, msg) }

func (Dialect) TextType(dbType string) bool { return sqldb.TextualType(dbType) }

// Open connects to the server described by cfg on a single connection.
func Open(ctx context.Context, cfg *database.Config, opts ...database.Option) (*sqldb.Conn, error) {
	return sqldb.Open(ctx, Dialect{}, DSN(cfg), opts...)
}

// DSN builds a go-sql-driver/mysql data source name from cfg.
// format: user:pass@tcp(host:port)/dbname?multiStatements=true
func DSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	// Connection.Exec runs migration-style scripts.
	mc.MultiStatements = true
	mc.Timeout = cfg.ConnectTimeout
	return mc.FormatDSN()
}
