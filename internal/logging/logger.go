package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	// LogLevelQuiet suppresses all output except errors
	LogLevelQuiet LogLevel = "quiet"
	// LogLevelNormal shows standard operational messages
	LogLevelNormal LogLevel = "normal"
	// LogLevelVerbose shows detailed operational information
	LogLevelVerbose LogLevel = "verbose"
	// LogLevelDebug shows all debug information
	LogLevelDebug LogLevel = "debug"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Logger provides structured logging capabilities
type Logger struct {
	logger        *logrus.Logger
	level         LogLevel
	correlationID string
	file          *os.File
}

// Config holds logger configuration
type Config struct {
	Level         LogLevel
	Output        io.Writer
	Format        string // "text" or "json"
	LogFile       string
	CorrelationID string
}

// NewLogger creates a new logger with the specified configuration.
// Output defaults to stderr so that command output on stdout stays clean.
func NewLogger(config Config) (*Logger, error) {
	logger := logrus.New()

	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	logger.SetOutput(output)

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	logger.SetLevel(toLogrusLevel(config.Level))

	correlationID := config.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	l := &Logger{
		logger:        logger,
		level:         config.Level,
		correlationID: correlationID,
	}

	if config.LogFile != "" {
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.LogFile, err)
		}
		logger.SetOutput(io.MultiWriter(output, file))
		l.file = file
	}

	return l, nil
}

// NewDefaultLogger creates a logger with default configuration
func NewDefaultLogger() *Logger {
	logger, _ := NewLogger(Config{
		Level:  LogLevelNormal,
		Format: "text",
	})
	return logger
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *Logger {
	logger, _ := NewLogger(Config{
		Level:  LogLevelQuiet,
		Output: io.Discard,
	})
	return logger
}

// ParseLevel maps the CLI verbosity switches onto a LogLevel
func ParseLevel(name string, verbose, quiet bool) LogLevel {
	switch {
	case quiet:
		return LogLevelQuiet
	case verbose:
		return LogLevelVerbose
	}

	switch LogLevel(name) {
	case LogLevelQuiet, LogLevelNormal, LogLevelVerbose, LogLevelDebug:
		return LogLevel(name)
	default:
		return LogLevelNormal
	}
}

func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case LogLevelQuiet:
		return logrus.ErrorLevel
	case LogLevelVerbose:
		return logrus.DebugLevel
	case LogLevelDebug:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Close releases the log file, if one was opened
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// CorrelationID returns the id attached to every entry of this invocation
func (l *Logger) CorrelationID() string {
	return l.correlationID
}

func (l *Logger) entry() *logrus.Entry {
	return l.logger.WithField("correlation_id", l.correlationID)
}

// WithContext returns a logger entry carrying the context correlation id when present
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.entry().WithContext(ctx)
	if id := GetCorrelationIDFromContext(ctx); id != "" {
		entry = entry.WithField("correlation_id", id)
	}
	return entry
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.entry().WithFields(fields)
}

// WithField returns a logger with a single additional field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// LogDatabaseConnection logs database connection attempts
func (l *Logger) LogDatabaseConnection(host string, database string, success bool, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": "database_connection",
		"host":      host,
		"database":  database,
		"duration":  duration.String(),
		"success":   success,
	}

	if success {
		l.entry().WithFields(fields).Debug("Database connection established")
		return
	}

	if err != nil {
		fields["error"] = err.Error()
	}
	l.entry().WithFields(fields).Error("Database connection failed")
}

// LogSQLExecution logs SQL statement execution
func (l *Logger) LogSQLExecution(sql string, duration time.Duration, rowsAffected int64, err error) {
	fields := logrus.Fields{
		"operation":     "sql_execution",
		"duration":      duration.String(),
		"rows_affected": rowsAffected,
		"sql":           SanitizeSQL(sql),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.entry().WithFields(fields).Error("SQL execution failed")
		return
	}

	l.entry().WithFields(fields).Debug("SQL executed successfully")
}

// LogOperationStart logs the start of an operation and returns a function to log completion
func (l *Logger) LogOperationStart(operation string, fields map[string]interface{}) func(error) {
	startTime := time.Now()

	logFields := logrus.Fields{
		"operation": operation,
		"status":    "started",
	}
	for k, v := range fields {
		logFields[k] = v
	}

	l.entry().WithFields(logFields).Debug("Operation started")

	return func(err error) {
		logFields["status"] = "completed"
		logFields["duration"] = time.Since(startTime).String()

		if err != nil {
			logFields["error"] = err.Error()
			logFields["success"] = false
			l.entry().WithFields(logFields).Debug("Operation failed")
			return
		}

		logFields["success"] = true
		l.entry().WithFields(logFields).Info("Operation completed")
	}
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.entry().Info(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.entry().Debug(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.entry().Warn(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.entry().Error(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	l.logger.SetLevel(toLogrusLevel(level))
}

// IsLevelEnabled checks if a log level is enabled
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	return l.logger.IsLevelEnabled(toLogrusLevel(level))
}

// CreateContextWithCorrelationID creates a context carrying a correlation id for tracing
func CreateContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// GetCorrelationIDFromContext extracts the correlation id from context
func GetCorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

var secretPattern = regexp.MustCompile(`(?i)(password\s*=\s*|identified\s+by\s+)('[^']*'|"[^"]*"|\S+)`)

const maxLoggedSQL = 500

// SanitizeSQL masks credentials in SQL text and truncates long statements for logging
func SanitizeSQL(sql string) string {
	sql = secretPattern.ReplaceAllString(sql, "${1}***")

	if len(sql) > maxLoggedSQL {
		return sql[:maxLoggedSQL] + "... [truncated]"
	}

	return sql
}
