package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"experiment-setup/internal/errors"
)

// LocalStore reads backups from a single directory; subdirectories are ignored
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new LocalStore instance
func NewLocalStore(config *LocalConfig) (*LocalStore, error) {
	if config == nil {
		return nil, errors.NewConfigError("local storage configuration is required", nil)
	}

	var verrs ValidationErrors
	config.validate(&verrs)
	if verrs.HasErrors() {
		return nil, errors.NewConfigError("invalid local storage configuration", verrs)
	}

	return &LocalStore{basePath: filepath.Clean(config.BasePath)}, nil
}

// List returns the backup files in the directory, using modification time as the creation time
func (ls *LocalStore) List(ctx context.Context) ([]Descriptor, error) {
	entries, err := os.ReadDir(ls.basePath)
	if err != nil {
		return nil, NewStorageError(fmt.Sprintf("failed to read backup directory %s", ls.basePath), err)
	}

	descs := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewAppError(errors.ErrorTypeInterruption, "listing canceled", err)
		}

		if !entry.Type().IsRegular() || !IsBackupFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			if os.IsNotExist(err) {
				continue
			}
			return nil, NewStorageError(fmt.Sprintf("failed to stat %s", entry.Name()), err)
		}

		descs = append(descs, Descriptor{
			Name:      entry.Name(),
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		})
	}

	SortDescriptors(descs)
	return descs, nil
}

// Open opens a backup by file name
func (ls *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, errors.NewParseError(fmt.Sprintf("invalid backup name %q", name), nil)
	}

	file, err := os.Open(filepath.Join(ls.basePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(name, err)
		}
		return nil, NewStorageError(fmt.Sprintf("failed to open backup %s", name), err)
	}

	return file, nil
}

// Location returns the backup directory
func (ls *LocalStore) Location() string {
	return ls.basePath
}

// Close is a no-op for the local store
func (ls *LocalStore) Close() error {
	return nil
}
