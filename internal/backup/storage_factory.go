package backup

import (
	"context"
	"fmt"

	"experiment-setup/internal/errors"
)

// NewStore creates the backup store selected by config.Provider
func NewStore(ctx context.Context, config StorageConfig) (Store, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid storage configuration", err)
	}

	switch config.Provider {
	case StorageProviderLocal:
		return NewLocalStore(config.Local)

	case StorageProviderS3:
		return NewS3Store(config.S3)

	case StorageProviderAzure:
		return NewAzureStore(config.Azure)

	case StorageProviderGCS:
		return NewGCSStore(ctx, config.GCS)

	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported storage provider: %s", config.Provider), nil)
	}
}
