package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		root:      slog.Default(),
		component: "unknown",
	}
}

// Middleware adds logger to every request context, tagged with the request
// id returned by extractRequestID when it is not empty.
func Middleware(logger *Logger, extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if extractRequestID != nil {
				if id := extractRequestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// StructuredLogger provides domain log lines with consistent fields
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogImportCompleted logs a successful import
func (sl *StructuredLogger) LogImportCompleted(ctx context.Context, sessionID, bank, fileName string, rows, accepted, skipped int, total string) {
	fields := NewFields().
		WithSession(sessionID).
		WithImportResult(rows, accepted, skipped, total).
		WithOperation(OpImport)
	fields[FieldBank] = bank
	fields[FieldFileName] = fileName

	sl.logger.InfoContext(ctx, "Import completed", fields.ToSlice()...)
}

// LogSkippedRow logs a row dropped by the sheet reader
func (sl *StructuredLogger) LogSkippedRow(ctx context.Context, sessionID string, row int, reason, value string) {
	sl.logger.WarnContext(ctx, "Spreadsheet row skipped",
		FieldOperation, OpRead,
		FieldSessionID, sessionID,
		"row", row,
		"reason", reason,
		"value", value)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)
	delete(allFields, FieldComponent)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
