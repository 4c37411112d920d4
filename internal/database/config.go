package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	DefaultPort       = 3306
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// DatabaseConfig holds the configuration parameters for database connection
type DatabaseConfig struct {
	Host       string        `mapstructure:"host" yaml:"host"`
	Port       int           `mapstructure:"port" yaml:"port"`
	Username   string        `mapstructure:"username" yaml:"username"`
	Password   string        `mapstructure:"password" yaml:"password"`
	Database   string        `mapstructure:"database" yaml:"database"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// SetDefaults fills zero values with their defaults
func (dc *DatabaseConfig) SetDefaults() {
	if dc.Port == 0 {
		dc.Port = DefaultPort
	}
	if dc.Timeout <= 0 {
		dc.Timeout = DefaultTimeout
	}
	if dc.MaxRetries <= 0 {
		dc.MaxRetries = DefaultMaxRetries
	}
}

// Validate checks if the database configuration has all required parameters
func (dc *DatabaseConfig) Validate() error {
	var errs []error

	if dc.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}

	if dc.Port <= 0 || dc.Port > 65535 {
		errs = append(errs, errors.New("port must be between 1 and 65535"))
	}

	if dc.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}

	if dc.Database == "" {
		errs = append(errs, errors.New("database name is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("database configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// DSN returns the Data Source Name for a MySQL connection.
// multiStatements enables running a whole SQL script in a single Exec, which restores need.
func (dc *DatabaseConfig) DSN(multiStatements bool) string {
	cfg := mysql.NewConfig()
	cfg.User = dc.Username
	cfg.Passwd = dc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
	cfg.DBName = dc.Database
	cfg.Timeout = dc.Timeout
	cfg.ParseTime = true
	cfg.MultiStatements = multiStatements
	return cfg.FormatDSN()
}
