package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SlowQueryThreshold is how long a query may run before it is logged as slow
const SlowQueryThreshold = time.Second

// GormLogger routes GORM's query log through logrus, dropping queries that
// match any of the ignored patterns (e.g. the reminder worker's poll).
type GormLogger struct {
	ignoredQueryPatterns []string
	level                gormlogger.LogLevel
}

// NewGormLogger creates a logger with the given ignored query patterns
func NewGormLogger(ignoredPatterns ...string) *GormLogger {
	return &GormLogger{
		ignoredQueryPatterns: ignoredPatterns,
		level:                gormlogger.Warn,
	}
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{
		ignoredQueryPatterns: l.ignoredQueryPatterns,
		level:                level,
	}
}

// Info implements logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		log.Infof(msg, args...)
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		log.Warnf(msg, args...)
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		log.Errorf(msg, args...)
	}
}

// Trace implements logger.Interface. Only errors and slow queries are logged;
// record-not-found is an expected outcome, not an error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	for _, pattern := range l.ignoredQueryPatterns {
		if strings.Contains(sql, pattern) {
			return
		}
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.WithFields(log.Fields{
			"rows":    rows,
			"elapsed": elapsed,
		}).Errorf("query failed: %v [%s]", err, sql)
	case elapsed > SlowQueryThreshold:
		log.WithFields(log.Fields{
			"rows":    rows,
			"elapsed": elapsed,
		}).Warnf("slow query [%s]", sql)
	}
}
