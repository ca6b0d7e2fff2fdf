package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

const (
	defaultAttempts = 5
	firstBackoff    = time.Second
	maxBackoff      = 16 * time.Second
	pingTimeout     = 3 * time.Second
)

// sleep is swapped in tests
var sleep = time.Sleep

// InitDatabase opens the configured store and pings it, retrying with a
// doubling backoff while the database is not reachable yet (e.g. a postgres
// container still starting next to the API).
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	driver := cfg.driver()
	if driver == "" {
		return nil, fmt.Errorf("unsupported database driver %q (supported: postgres, sqlite)", cfg.Driver)
	}
	entry := log.WithFields(logrus.Fields{"db": cfg.String()})
	entry.Info("Connecting to database")

	var lastErr error
	backoff := firstBackoff
	for attempt := 1; attempt <= cfg.attempts(); attempt++ {
		db, err := open(driver, cfg.DSN())
		if err == nil {
			entry.WithField("attempt", attempt).Info("Database ready")
			return db, nil
		}
		lastErr = err
		entry.WithError(err).WithField("attempt", attempt).Warn("Database not reachable")

		if attempt < cfg.attempts() {
			sleep(backoff)
			backoff = min(backoff*2, maxBackoff)
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.attempts(), lastErr)
}

// open connects once, verifies the connection and sizes the pool
func open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == DriverPostgres {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	p := pools[driver]
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxLifetime(p.maxLifetime)
	return db, nil
}

// gormConfig sends slow queries and driver errors to logrus. Unique
// violations come back as gorm.ErrDuplicatedKey for the repositories.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
