package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCompact(t *testing.T) {
	assert.Equal(t, "SELECT id FROM carts WHERE id = $1", compact("\n  SELECT id\n\tFROM carts\nWHERE id = $1\n"))
	assert.Equal(t, "", compact(" \n "))
}

func TestQueryTracer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tracer := &queryTracer{logger: zap.New(core), threshold: 100 * time.Millisecond, now: func() time.Time { return clock }}

	run := func(took time.Duration, err error) {
		ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1\nFROM carts"})
		clock = clock.Add(took)
		tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1"), Err: err})
	}

	run(10*time.Millisecond, nil)
	run(10*time.Millisecond, pgx.ErrNoRows)
	require.Equal(t, 0, logs.Len(), "fast and no-row queries stay quiet")

	run(150*time.Millisecond, nil)
	run(time.Millisecond, errors.New("deadlock detected"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "slow query", entries[0].Message)
	assert.Equal(t, "SELECT 1 FROM carts", entries[0].ContextMap()["sql"])
	assert.Equal(t, "query failed", entries[1].Message)

	// no start data in ctx
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{Err: errors.New("x")})
	assert.Equal(t, 2, logs.Len())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(errors.Join(errors.New("insert"), &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}
