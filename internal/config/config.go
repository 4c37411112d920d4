package config

import (
	"errors"
	"fmt"
	"strings"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/database"
	apperrors "experiment-setup/internal/errors"
	"experiment-setup/internal/logging"

	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file searched in $HOME and the working directory
	ConfigName = ".experiment-setup"
	// EnvPrefix prefixes every environment variable override
	EnvPrefix = "EXPERIMENT_SETUP"
)

// Config is the application configuration
type Config struct {
	Database database.DatabaseConfig `mapstructure:"database" yaml:"database"`
	Backup   BackupConfig            `mapstructure:"backup" yaml:"backup"`
	Log      LogConfig               `mapstructure:"log" yaml:"log"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// Validate validates the log configuration
func (lc *LogConfig) Validate() error {
	switch logging.LogLevel(lc.Level) {
	case logging.LogLevelQuiet, logging.LogLevelNormal, logging.LogLevelVerbose, logging.LogLevelDebug:
	default:
		return fmt.Errorf("invalid log level %q, must be one of: quiet, normal, verbose, debug", lc.Level)
	}

	switch lc.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be text or json", lc.Format)
	}

	return nil
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", database.DefaultPort)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.timeout", database.DefaultTimeout)
	v.SetDefault("database.max_retries", database.DefaultMaxRetries)

	v.SetDefault("backup.storage.provider", string(backup.StorageProviderLocal))
	v.SetDefault("backup.storage.local.base_path", DefaultBackupDirectory)
	v.SetDefault("backup.encryption_passphrase", "")
	v.SetDefault("backup.encryption_passphrase_file", "")
	v.SetDefault("backup.location", "")

	v.SetDefault("log.level", string(logging.LogLevelNormal))
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// cloudKeys have no defaults, so viper only sees them in the environment once bound
var cloudKeys = []string{
	"s3.bucket", "s3.region", "s3.prefix", "s3.endpoint", "s3.access_key", "s3.secret_key",
	"azure.account_name", "azure.account_key", "azure.container_name", "azure.prefix",
	"gcs.bucket", "gcs.prefix", "gcs.credentials_path",
}

// ConfigureEnv makes EXPERIMENT_SETUP_DATABASE_PASSWORD override database.password
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range cloudKeys {
		_ = v.BindEnv("backup.storage." + key)
	}
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, apperrors.NewConfigError("failed to unmarshal configuration", err)
	}

	config.Database.SetDefaults()
	config.Backup.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	return config, nil
}

// Validate checks the sections every command needs. Database settings are
// checked when a connection is opened since list-backups does not use them.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if err := c.Backup.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
