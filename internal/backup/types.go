package backup

import (
	"strings"
)

type StorageProviderType string

const (
	StorageProviderLocal StorageProviderType = "LOCAL"
	StorageProviderS3    StorageProviderType = "S3"
	StorageProviderAzure StorageProviderType = "AZURE"
	StorageProviderGCS   StorageProviderType = "GCS"
)

// SupportedProviders lists the storage backends a backup store can be built on
func SupportedProviders() []StorageProviderType {
	return []StorageProviderType{
		StorageProviderLocal,
		StorageProviderS3,
		StorageProviderAzure,
		StorageProviderGCS,
	}
}

// ParseProvider normalizes a provider name such as "s3" or "Local"
func ParseProvider(name string) StorageProviderType {
	return StorageProviderType(strings.ToUpper(strings.TrimSpace(name)))
}

// StorageConfig defines where backups are listed and read from
type StorageConfig struct {
	Provider StorageProviderType `mapstructure:"provider" yaml:"provider"`
	Local    *LocalConfig        `mapstructure:"local" yaml:"local,omitempty"`
	S3       *S3Config           `mapstructure:"s3" yaml:"s3,omitempty"`
	Azure    *AzureConfig        `mapstructure:"azure" yaml:"azure,omitempty"`
	GCS      *GCSConfig          `mapstructure:"gcs" yaml:"gcs,omitempty"`
}

// LocalConfig for a backup directory on the local file system
type LocalConfig struct {
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// S3Config for Amazon S3 storage. Static credentials are used only when both keys are set.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// AzureConfig for Azure Blob Storage
type AzureConfig struct {
	AccountName   string `mapstructure:"account_name" yaml:"account_name"`
	AccountKey    string `mapstructure:"account_key" yaml:"account_key"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Prefix        string `mapstructure:"prefix" yaml:"prefix"`
}

// GCSConfig for Google Cloud Storage. Without CredentialsPath the default credentials are used.
type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	CredentialsPath string `mapstructure:"credentials_path" yaml:"credentials_path,omitempty"`
}

// Validate validates the StorageConfig struct
func (sc *StorageConfig) Validate() error {
	var errors ValidationErrors

	sc.Provider = ParseProvider(string(sc.Provider))
	if sc.Provider == "" {
		sc.Provider = StorageProviderLocal
	}

	switch sc.Provider {
	case StorageProviderLocal:
		if sc.Local == nil {
			errors.Add("local", "local storage configuration is required", nil)
		} else {
			sc.Local.validate(&errors)
		}
	case StorageProviderS3:
		if sc.S3 == nil {
			errors.Add("s3", "S3 storage configuration is required", nil)
		} else {
			sc.S3.validate(&errors)
		}
	case StorageProviderAzure:
		if sc.Azure == nil {
			errors.Add("azure", "Azure storage configuration is required", nil)
		} else {
			sc.Azure.validate(&errors)
		}
	case StorageProviderGCS:
		if sc.GCS == nil {
			errors.Add("gcs", "GCS storage configuration is required", nil)
		} else {
			sc.GCS.validate(&errors)
		}
	default:
		errors.Add("provider", "invalid storage provider type", sc.Provider)
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

func (lc *LocalConfig) validate(errors *ValidationErrors) {
	if lc.BasePath == "" {
		errors.Add("local.base_path", "base path is required for local storage", lc.BasePath)
	}
}

func (s3c *S3Config) validate(errors *ValidationErrors) {
	if s3c.Bucket == "" {
		errors.Add("s3.bucket", "S3 bucket name is required", s3c.Bucket)
	}

	if s3c.Region == "" {
		errors.Add("s3.region", "S3 region is required", s3c.Region)
	}

	if (s3c.AccessKey == "") != (s3c.SecretKey == "") {
		errors.Add("s3.access_key", "S3 access key and secret key must be set together", nil)
	}
}

func (ac *AzureConfig) validate(errors *ValidationErrors) {
	if ac.AccountName == "" {
		errors.Add("azure.account_name", "Azure account name is required", ac.AccountName)
	}

	if ac.AccountKey == "" {
		errors.Add("azure.account_key", "Azure account key is required", nil)
	}

	if ac.ContainerName == "" {
		errors.Add("azure.container_name", "Azure container name is required", ac.ContainerName)
	}
}

func (gc *GCSConfig) validate(errors *ValidationErrors) {
	if gc.Bucket == "" {
		errors.Add("gcs.bucket", "GCS bucket name is required", gc.Bucket)
	}
}

// normalizePrefix makes a non-empty object prefix end with a single slash
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
