package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	HealthInterval  time.Duration

	// StatementTimeout is sent as the statement_timeout session parameter.
	// Zero leaves the server default.
	StatementTimeout time.Duration
}

func (cfg Config) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Username, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
	if cfg.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", cfg.StatementTimeout.Milliseconds())
	}
	return dsn
}

// Provider hands out a database handle bound to the caller's context.
type Provider interface {
	DB(ctx context.Context) *gorm.DB
}

type Opener func() (*gorm.DB, error)

const (
	maxReopenBackoff = 30 * time.Second

	drainTimeout = 30 * time.Second
	drainPoll    = 50 * time.Millisecond
)

// Pool owns the shared gorm handle. A supervisor pings it on an interval and
// swaps in a freshly opened handle when the ping fails.
type Pool struct {
	mu       sync.RWMutex
	db       *gorm.DB
	open     Opener
	interval time.Duration
	log      *logrus.Entry

	cancel   context.CancelFunc
	done     chan struct{}
	retiring sync.WaitGroup
}

func NewPool(cfg Config, log *logrus.Entry) (*Pool, error) {
	open := func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			PrepareStmt:    true,
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
		sqlDB.SetConnMaxLifetime(time.Hour)

		return db, nil
	}

	return NewPoolWithOpener(open, cfg.HealthInterval, log)
}

// NewPoolWithOpener opens the first handle right away and fails if the
// database is unreachable.
func NewPoolWithOpener(open Opener, interval time.Duration, log *logrus.Entry) (*Pool, error) {
	db, err := open()
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := ping(context.Background(), db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("ping pool: %w", err)
	}

	if interval <= 0 {
		interval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		db:       db,
		open:     open,
		interval: interval,
		log:      log,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.supervise(ctx)

	return p, nil
}

func (p *Pool) DB(ctx context.Context) *gorm.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db.WithContext(ctx)
}

func (p *Pool) Ping(ctx context.Context) error {
	return ping(ctx, p.DB(ctx))
}

// Close stops the supervisor and releases the current handle once replaced
// handles have drained.
func (p *Pool) Close() error {
	p.cancel()
	<-p.done
	p.retiring.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Pool) supervise(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, p.interval)
		err := p.Ping(pingCtx)
		cancel()
		if err == nil {
			continue
		}

		p.log.Warnf("pool ping failed, reopening: %v", err)
		if !p.reopen(ctx) {
			return
		}
		p.log.Info("pool reopened")
	}
}

// reopen retries with exponential backoff until a new handle answers a ping
// or ctx is cancelled.
func (p *Pool) reopen(ctx context.Context) bool {
	backoff := p.interval
	for {
		db, err := p.open()
		if err == nil {
			if err = ping(ctx, db); err == nil {
				p.swap(db)
				return true
			}
			closeDB(db)
		}

		p.log.Errorf("pool reopen failed, retry in %s: %v", backoff, err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReopenBackoff {
			backoff = maxReopenBackoff
		}
	}
}

func (p *Pool) swap(db *gorm.DB) {
	p.mu.Lock()
	old := p.db
	p.db = db
	p.mu.Unlock()

	p.retiring.Add(1)
	go p.retire(old)
}

// retire closes a replaced handle after the requests still holding its
// connections give them back, or after drainTimeout.
func (p *Pool) retire(db *gorm.DB) {
	defer p.retiring.Done()
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	deadline := time.Now().Add(drainTimeout)
	for sqlDB.Stats().InUse > 0 && time.Now().Before(deadline) {
		time.Sleep(drainPoll)
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// IsTransient reports whether err looks like a dropped or timed out
// connection that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "timeout")
}
