// Package logging provides structured logging for the extraction pipeline.
//
// logger.go implements the Logger that wraps zap.Logger. It composes:
//   - file_writer.go: log file rotation via lumberjack
//   - multi_core.go: tee output to console + file
//   - sensitive_filter.go: API key redaction
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger and provides structured logging with automatic
// sensitive data redaction.
//
// Example:
//
//	logger, err := NewLogger(true, "extractor.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("extraction started", zap.String("filename", "protocol.pdf"))
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
}

// NewLogger creates a Logger configured for the given environment.
//
// Development mode uses colored console output at debug level; production
// uses JSON output at info level. Output always goes to both console and
// the rotating log file (100MB max, 5 backups, 30 days, compressed).
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	var level zapcore.Level
	if isDevelopment {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	core, err := NewMultiCore(level, logFilePath, isDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create log core: %w", err)
	}

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip this wrapper layer
	)

	return &Logger{
		zap:           zapLogger,
		sugar:         zapLogger.Sugar(),
		isDevelopment: isDevelopment,
		logFilePath:   logFilePath,
	}, nil
}

// NewLoggerWithCore creates a Logger from an explicit zapcore.Core.
// Useful in tests where output should go to a buffer.
func NewLoggerWithCore(core zapcore.Core) *Logger {
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{
		zap:   zapLogger,
		sugar: zapLogger.Sugar(),
	}
}

// NewNop returns a Logger that discards all output. For tests.
func NewNop() *Logger {
	zapLogger := zap.NewNop()
	return &Logger{zap: zapLogger, sugar: zapLogger.Sugar()}
}

// Named returns a Logger with the given name segment appended.
//
// Example:
//
//	ocrLog := logger.Named("ocr-processor")
func (l *Logger) Named(name string) *Logger {
	named := l.zap.Named(name)
	return &Logger{
		zap:           named,
		sugar:         named.Sugar(),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// With returns a Logger with the given fields attached to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.zap.With(l.redactFields(fields)...)
	return &Logger{
		zap:           child,
		sugar:         child.Sugar(),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Sync flushes any buffered log entries. Call before exiting.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel with optional structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, l.redactFields(fields)...)
}

// Info logs a message at InfoLevel with optional structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, l.redactFields(fields)...)
}

// Warn logs a message at WarnLevel with optional structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, l.redactFields(fields)...)
}

// Error logs a message at ErrorLevel with optional structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, l.redactFields(fields)...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, l.redactFields(fields)...)
}

// Infow logs a message at InfoLevel with loosely-typed key-value pairs.
//
// Example:
//
//	logger.Infow("page extracted", "page", 3, "rows", 12)
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Warnw logs a message at WarnLevel with loosely-typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Errorw logs a message at ErrorLevel with loosely-typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, l.redactKeysAndValues(keysAndValues)...)
}

// redactFields applies sensitive data redaction to string field values.
func (l *Logger) redactFields(fields []zap.Field) []zap.Field {
	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		if field.Type == zapcore.StringType {
			result[i] = zap.String(field.Key, RedactField(field.Key, field.String))
		} else {
			result[i] = field
		}
	}
	return result
}

// redactKeysAndValues applies redaction to string values in sugared pairs.
func (l *Logger) redactKeysAndValues(keysAndValues []interface{}) []interface{} {
	result := make([]interface{}, len(keysAndValues))
	copy(result, keysAndValues)
	for i := 0; i+1 < len(result); i += 2 {
		key, keyOK := result[i].(string)
		value, valueOK := result[i+1].(string)
		if keyOK && valueOK {
			result[i+1] = RedactField(key, value)
		}
	}
	return result
}
