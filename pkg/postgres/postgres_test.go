package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func memoryOpener(opens *int32) Opener {
	return func() (*gorm.DB, error) {
		atomic.AddInt32(opens, 1)
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Discard,
		})
	}
}

func TestPoolReopensAfterFailedPing(t *testing.T) {
	var opens int32
	pool, err := NewPoolWithOpener(memoryOpener(&opens), 20*time.Millisecond, quietLog())
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	require.NoError(t, pool.Ping(ctx))

	sqlDB, err := pool.DB(ctx).DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&opens) >= 2 && pool.Ping(ctx) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSwapWaitsForInFlightConnections(t *testing.T) {
	var opens int32
	pool, err := NewPoolWithOpener(memoryOpener(&opens), time.Hour, quietLog())
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	old, err := pool.DB(ctx).DB()
	require.NoError(t, err)
	conn, err := old.Conn(ctx)
	require.NoError(t, err)

	replacement, err := memoryOpener(&opens)()
	require.NoError(t, err)
	pool.swap(replacement)

	time.Sleep(5 * drainPoll)
	require.NoError(t, conn.PingContext(ctx))
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return old.PingContext(ctx) != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewPoolFailsFast(t *testing.T) {
	_, err := NewPoolWithOpener(func() (*gorm.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	}, time.Second, quietLog())
	require.Error(t, err)
}

func TestCloseStopsSupervisor(t *testing.T) {
	var opens int32
	pool, err := NewPoolWithOpener(memoryOpener(&opens), 10*time.Millisecond, quietLog())
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&opens))
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(fmt.Errorf("query: %w", syscall.ECONNRESET)))
	require.True(t, IsTransient(context.DeadlineExceeded))
	require.True(t, IsTransient(errors.New("read tcp 10.0.0.1:5432: i/o timeout")))
	require.False(t, IsTransient(errors.New("duplicate key value violates unique constraint")))
	require.False(t, IsTransient(nil))
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", Username: "shop", Password: "secret", DBName: "store", SSLMode: "disable", TimeZone: "UTC"}
	require.Equal(t, "host=db user=shop password=secret dbname=store port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.StatementTimeout = time.Minute
	require.Equal(t, "host=db user=shop password=secret dbname=store port=5432 sslmode=disable TimeZone=UTC statement_timeout=60000", cfg.DSN())
}
