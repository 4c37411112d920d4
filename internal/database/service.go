package database

import (
	"context"
	"database/sql"
	"time"

	"experiment-setup/internal/errors"
	"experiment-setup/internal/logging"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// OpenFunc opens a database handle; sql.Open by default
type OpenFunc func(driverName, dataSourceName string) (*sql.DB, error)

// Service opens, tests and closes the single connection a command invocation uses
type Service struct {
	connectionTimeout time.Duration
	logger            *logging.Logger
	retryConfig       errors.RetryConfig
	open              OpenFunc
}

// NewService creates a new database service with default settings
func NewService(logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Service{
		connectionTimeout: DefaultTimeout,
		logger:            logger,
		retryConfig:       errors.DefaultRetryConfig(),
		open:              sql.Open,
	}
}

// NewServiceWithOptions creates a database service with a custom opener and retry backoff
func NewServiceWithOptions(logger *logging.Logger, open OpenFunc, retry errors.RetryConfig) *Service {
	s := NewService(logger)
	if open != nil {
		s.open = open
	}
	s.retryConfig = retry
	return s
}

// Connect establishes a connection to the MySQL database with retry logic.
// config.MaxRetries overrides the attempt count of the service's retry policy.
func (s *Service) Connect(ctx context.Context, config DatabaseConfig, multiStatements bool) (*sql.DB, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid database configuration", err)
	}

	startTime := time.Now()
	s.logger.WithFields(map[string]interface{}{
		"host":     config.Host,
		"database": config.Database,
		"port":     config.Port,
	}).Debug("Attempting database connection")

	retryConfig := s.retryConfig
	retryConfig.MaxAttempts = config.MaxRetries
	retryHandler := errors.NewRetryHandler(retryConfig)

	var db *sql.DB
	err := retryHandler.Retry(ctx, func() error {
		handle, openErr := s.open("mysql", config.DSN(multiStatements))
		if openErr != nil {
			return errors.WrapError(openErr, "failed to open database connection")
		}

		handle.SetMaxOpenConns(1)
		handle.SetConnMaxLifetime(5 * time.Minute)

		if testErr := s.testConnection(ctx, handle, config.Timeout); testErr != nil {
			handle.Close()
			return testErr
		}

		db = handle
		return nil
	})

	s.logger.LogDatabaseConnection(config.Host, config.Database, err == nil, time.Since(startTime), err)

	if err != nil {
		return nil, errors.WrapError(err, "failed to connect to database")
	}

	return db, nil
}

// TestConnection verifies that the database connection is working
func (s *Service) TestConnection(ctx context.Context, db *sql.DB) error {
	return s.testConnection(ctx, db, s.connectionTimeout)
}

func (s *Service) testConnection(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return errors.NewDataAccessError("database connection is nil", nil)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return errors.WrapError(err, "failed to ping database")
	}

	return nil
}

// ExecScript runs a complete SQL script with a single Exec.
// The connection must have been opened with multiStatements enabled.
func (s *Service) ExecScript(ctx context.Context, db *sql.DB, script string) error {
	if db == nil {
		return errors.NewDataAccessError("database connection is nil", nil)
	}

	startTime := time.Now()
	result, err := db.ExecContext(ctx, script)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.LogSQLExecution(script, duration, 0, err)
		return errors.WrapError(err, "failed to execute SQL script")
	}

	var rowsAffected int64
	if result != nil {
		rowsAffected, _ = result.RowsAffected()
	}
	s.logger.LogSQLExecution(script, duration, rowsAffected, nil)

	return nil
}

// Close gracefully closes the database connection
func (s *Service) Close(db *sql.DB) error {
	if db == nil {
		return nil
	}

	if err := db.Close(); err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to close database connection")
		return errors.WrapError(err, "failed to close database connection")
	}

	s.logger.Debug("Database connection closed")
	return nil
}
