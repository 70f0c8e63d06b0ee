package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	Driver       string // "postgres" or "sqlite"
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

// Connect opens the database and configures the connection pool. Unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func Connect(opts Options, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "", "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// PostgresDSN builds a key/value DSN from discrete settings.
func PostgresDSN(host, user, password, name, port string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, name, port,
	)
}

func newGormLogger(log logrus.FieldLogger, level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch level {
	case "debug", "trace":
		lvl = gormlogger.Info
	case "error", "fatal", "panic":
		lvl = gormlogger.Error
	}

	return gormlogger.New(
		writerFunc(func(format string, args ...interface{}) {
			log.WithField("component", "gorm").Infof(format, args...)
		}),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

type writerFunc func(format string, args ...interface{})

func (f writerFunc) Printf(format string, args ...interface{}) {
	f(format, args...)
}
