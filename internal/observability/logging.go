// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var globalLogger atomic.Pointer[slog.Logger]

func init() {
	globalLogger.Store(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// SetLogger replaces the logger used by repository logging helpers.
func SetLogger(l *slog.Logger) {
	if l != nil {
		globalLogger.Store(l)
	}
}

// GetLogger returns the current logger.
func GetLogger() *slog.Logger {
	return globalLogger.Load()
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{EnableRepoLogging: true}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, msg, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GetLogger().Log(ctx, level, msg, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "repository create", "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "repository update", "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "repository delete", "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.log(ctx, slog.LevelError, "repository error", operation, map[string]any{"error": err.Error()})
}
