// Package storetest opens throwaway in-memory databases for storage tests.
package storetest

import (
	"context"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Provider adapts a plain handle to postgres.Provider.
type Provider struct {
	Conn *gorm.DB
}

func (p Provider) DB(ctx context.Context) *gorm.DB {
	return p.Conn.WithContext(ctx)
}

// NewDB migrates models into a fresh in-memory database. The pool is capped
// at one connection, so concurrent transactions run one after another.
func NewDB(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models...))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func Log() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
