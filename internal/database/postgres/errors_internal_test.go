package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

var configZero = database.Config{Driver: database.DriverPostgres}

func TestClassifySQLState(t *testing.T) {
	tests := []struct {
		code string
		want errs.ErrKind
	}{
		{"23502", errs.ErrKindConstraint}, // not_null_violation
		{"23505", errs.ErrKindConstraint}, // unique_violation
		{"23503", errs.ErrKindConstraint}, // foreign_key_violation
		{"42601", errs.ErrKindFormat},
		{"42501", errs.ErrKindPermissionDenied},
		{"08006", errs.ErrKindConnectionFailed},
		{"28P01", errs.ErrKindConnectionFailed},
		{"57014", errs.ErrKindTimeout},
		{"55P03", errs.ErrKindTimeout},
		{"22P02", errs.ErrKindTypeMismatch},
		{"22003", errs.ErrKindBounds},
		{"42P01", errs.ErrKindQueryFailed},
		{"X", errs.ErrKindQueryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, classifySQLState(tt.code))
		})
	}
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "x", errs.ErrKindQueryFailed))

	pgErr := &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "t_pkey"`}
	err := mapError(fmt.Errorf("exec: %w", pgErr), "execute failed", errs.ErrKindQueryFailed)
	assert.True(t, errs.IsConstraint(err))
	assert.Contains(t, err.Error(), "duplicate key")

	assert.True(t, errs.IsNotFound(mapError(pgx.ErrNoRows, "x", errs.ErrKindQueryFailed)))
	assert.True(t, errs.IsTimeout(mapError(context.DeadlineExceeded, "x", errs.ErrKindQueryFailed)))
	assert.True(t, errs.IsDecode(mapError(errors.New("odd"), "x", errs.ErrKindDecode)))

	kinded := errs.New(errs.ErrKindBindingIncomplete, "parameter 1 of 1 is not bound")
	assert.Equal(t, kinded, mapError(kinded, "x", errs.ErrKindQueryFailed))
}

func TestDecode(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want cursor.Cell
	}{
		{"nil", nil, cursor.NullCell()},
		{"int2", int16(2), cursor.Int64Cell(2)},
		{"int4", int32(4), cursor.Int64Cell(4)},
		{"int8", int64(8), cursor.Int64Cell(8)},
		{"bool", true, cursor.Int64Cell(1)},
		{"float4", float32(0.5), cursor.Float64Cell(0.5)},
		{"float8", 1.25, cursor.Float64Cell(1.25)},
		{"numeric", pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, cursor.Float64Cell(12.34)},
		{"text", "hi", cursor.TextCell("hi")},
		{"timestamptz", at, cursor.TextCell("2024-05-06T07:08:09Z")},
		{"uuid", [16]byte(id), cursor.TextCell(id.String())},
		{"bytea", []byte{1, 2}, cursor.BlobCell([]byte{1, 2})},
		{"jsonb", map[string]any{"a": float64(1)}, cursor.TextCell(`{"a":1}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decode(pgtype.Interval{Microseconds: 1, Valid: true})
	assert.True(t, errs.IsDecode(err))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "host=localhost port=5432 sslmode=disable", DSN(&configZero))

	cfg := configZero
	cfg.Host = "db"
	cfg.Port = 6543
	cfg.User = "app"
	cfg.Password = "it's secret"
	cfg.Name = "orders"
	cfg.SSLMode = "require"
	cfg.ConnectTimeout = 5 * time.Second
	assert.Equal(t,
		`host=db port=6543 sslmode=require user=app password='it\'s secret' dbname=orders connect_timeout=5`,
		DSN(&cfg))

	cfg.DSN = "postgres://u@h/db"
	assert.Equal(t, "postgres://u@h/db", DSN(&cfg))
}

func TestDSN_ParsesWithPgx(t *testing.T) {
	cfg := configZero
	cfg.Host = "db"
	cfg.User = "app"
	cfg.Password = `a b\c`
	cfg.Name = "orders"

	parsed, err := pgx.ParseConfig(DSN(&cfg))
	require.NoError(t, err)
	assert.Equal(t, "db", parsed.Host)
	assert.Equal(t, uint16(5432), parsed.Port)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, `a b\c`, parsed.Password)
	assert.Equal(t, "orders", parsed.Database)
}
