package mysql_test

import (
	"context"
	"os"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/database/mysql"
	"github.com/koustreak/rowcursor/internal/errs"
)

func TestDSN(t *testing.T) {
	cfg := &database.Config{
		Driver:         database.DriverMySQL,
		Host:           "db.internal",
		User:           "app",
		Password:       "s3cret",
		Name:           "orders",
		ConnectTimeout: 3 * time.Second,
	}

	parsed, err := gomysql.ParseDSN(mysql.DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "s3cret", parsed.Passwd)
	assert.Equal(t, "orders", parsed.DBName)
	assert.False(t, parsed.ParseTime, "temporal columns arrive as text")
	assert.True(t, parsed.MultiStatements)
	assert.Equal(t, 3*time.Second, parsed.Timeout)

	cfg.DSN = "root@tcp(127.0.0.1:3307)/x"
	assert.Equal(t, "root@tcp(127.0.0.1:3307)/x", mysql.DSN(cfg))
}

// Integration tests run against the server named by ROWCURSOR_MYSQL_DSN.
func openServer(t *testing.T) database.Connection {
	t.Helper()
	dsn := os.Getenv("ROWCURSOR_MYSQL_DSN")
	if dsn == "" {
		t.Skip("ROWCURSOR_MYSQL_DSN not set")
	}
	ctx := context.Background()
	conn, err := mysql.Open(ctx, &database.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Exec(ctx, `
		DROP TABLE IF EXISTS rowcursor_test;
		CREATE TABLE rowcursor_test (
			id  BIGINT AUTO_INCREMENT PRIMARY KEY,
			num BIGINT NOT NULL,
			str VARCHAR(64),
			raw VARBINARY(16)
		)`))
	return conn
}

func TestIntegration_InsertQuery(t *testing.T) {
	conn := openServer(t)
	ctx := context.Background()

	stmt, err := conn.CreateStatement(ctx, "INSERT INTO rowcursor_test(num, str, raw) VALUES (?, ?, ?)")
	require.NoError(t, err)
	defer stmt.Close()

	for i := range 4 {
		require.NoError(t, stmt.BindInt64(1, int64(i)))
		if i%2 == 0 {
			require.NoError(t, stmt.BindNull(2))
		} else {
			require.NoError(t, stmt.BindText(2, "odd"))
		}
		require.NoError(t, stmt.BindBlob(3, []byte{byte(i)}))
		id, err := stmt.ExecuteInsert(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	_, rows, err := database.QueryRows(ctx, conn, "SELECT num, str, raw FROM rowcursor_test ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.True(t, rows[0].IsNull(1))
	assert.Equal(t, "odd", rows[1].Get(1))
	assert.Equal(t, []byte{3}, rows[3].Get(2))

	n, err := database.LongForQuery(ctx, conn, "SELECT count(*) FROM rowcursor_test")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestIntegration_Errors(t *testing.T) {
	conn := openServer(t)
	ctx := context.Background()

	_, err := conn.CreateStatement(ctx, "SELEC 1")
	assert.True(t, errs.IsFormat(err), "got %v", err)

	err = database.WithStatement(ctx, conn, "INSERT INTO rowcursor_test(num) VALUES (?)", func(stmt database.Statement) error {
		if err := stmt.BindNull(1); err != nil {
			return err
		}
		return stmt.Execute(ctx)
	})
	assert.True(t, errs.IsConstraint(err), "got %v", err)
}

func TestIntegration_Rollback(t *testing.T) {
	conn := openServer(t)
	ctx := context.Background()

	require.NoError(t, conn.Begin(ctx))
	err := database.WithStatement(ctx, conn, "INSERT INTO rowcursor_test(num) VALUES (?)", func(stmt database.Statement) error {
		if err := stmt.BindInt64(1, 1); err != nil {
			return err
		}
		return stmt.Execute(ctx)
	})
	require.NoError(t, err)
	require.NoError(t, conn.Rollback(ctx))

	n, err := database.LongForQuery(ctx, conn, "SELECT count(*) FROM rowcursor_test")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
