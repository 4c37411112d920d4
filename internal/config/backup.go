package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"experiment-setup/internal/backup"
)

// DefaultBackupDirectory is used when no storage is configured
const DefaultBackupDirectory = "backups"

// BackupConfig holds backup store configuration
type BackupConfig struct {
	Storage backup.StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Passphrase for .enc backups, given inline or as a file holding it
	EncryptionPassphrase     string `mapstructure:"encryption_passphrase" yaml:"encryption_passphrase,omitempty"`
	EncryptionPassphraseFile string `mapstructure:"encryption_passphrase_file" yaml:"encryption_passphrase_file,omitempty"`

	// Location is the IANA time zone used for --start/--end and listed timestamps
	Location string `mapstructure:"location" yaml:"location,omitempty"`
}

// Validate validates the backup configuration
func (bc *BackupConfig) Validate() error {
	var errs []error

	if err := bc.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if bc.EncryptionPassphrase != "" && bc.EncryptionPassphraseFile != "" {
		errs = append(errs, errors.New("encryption_passphrase and encryption_passphrase_file are mutually exclusive"))
	}

	if _, err := bc.LoadLocation(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("backup configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// SetDefaults points an unconfigured local store at DefaultBackupDirectory
func (bc *BackupConfig) SetDefaults() {
	if bc.Storage.Provider == "" {
		bc.Storage.Provider = backup.StorageProviderLocal
	}
	if backup.ParseProvider(string(bc.Storage.Provider)) == backup.StorageProviderLocal {
		if bc.Storage.Local == nil {
			bc.Storage.Local = &backup.LocalConfig{}
		}
		if bc.Storage.Local.BasePath == "" {
			bc.Storage.Local.BasePath = DefaultBackupDirectory
		}
	}
}

// LoadLocation resolves Location; empty means the local time zone
func (bc *BackupConfig) LoadLocation() (*time.Location, error) {
	if bc.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(bc.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", bc.Location, err)
	}
	return loc, nil
}

// Passphrase returns the configured encryption passphrase, reading the file if one is set
func (bc *BackupConfig) Passphrase() (string, error) {
	if bc.EncryptionPassphraseFile == "" {
		return bc.EncryptionPassphrase, nil
	}

	data, err := os.ReadFile(bc.EncryptionPassphraseFile)
	if err != nil {
		return "", fmt.Errorf("failed to read encryption passphrase file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
