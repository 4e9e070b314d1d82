package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"petclinic/internal/platform/logger"
)

const slowQueryThreshold = time.Second

// gormLog manda las trazas de gorm al logger de la app: SQL en debug,
// consultas lentas en warn y errores (salvo record not found) en error.
type gormLog struct {
	log   logger.Logger
	level gormLogger.LogLevel
}

func newGormLogger(log logger.Logger) gormLogger.Interface {
	if log == nil {
		log = logger.NewNop()
	}
	return &gormLog{log: log.With(map[string]any{"component": "gorm"}), level: gormLogger.Info}
}

func (l *gormLog) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLog) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Info {
		l.log.Info(msg, map[string]any{"args": args})
	}
}

func (l *gormLog) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Warn {
		l.log.Warn(msg, map[string]any{"args": args})
	}
}

func (l *gormLog) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Error {
		l.log.Error(msg, map[string]any{"args": args})
	}
}

func (l *gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	query, rows := fc()
	fields := map[string]any{
		"sql":         query,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormLogger.Error:
		fields["error"] = err
		l.log.Error("gorm query failed", fields)
	case elapsed > slowQueryThreshold && l.level >= gormLogger.Warn:
		l.log.Warn("gorm slow query", fields)
	case l.level >= gormLogger.Info:
		l.log.Debug("gorm query", fields)
	}
}
