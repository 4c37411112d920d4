package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"experiment-setup/internal/errors"
	"experiment-setup/internal/logging"
)

// Restorer replays a backup's SQL script against the database
type Restorer struct {
	store    Store
	decoder  *Decoder
	executor ScriptExecutor
	logger   *logging.Logger
}

// NewRestorer creates a restorer reading from store and executing through executor
func NewRestorer(store Store, decoder *Decoder, executor ScriptExecutor, logger *logging.Logger) *Restorer {
	if decoder == nil {
		decoder = NewDecoder("")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Restorer{
		store:    store,
		decoder:  decoder,
		executor: executor,
		logger:   logger,
	}
}

// Target describes where file will be read from, for the confirmation prompt
func (r *Restorer) Target(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	location := r.store.Location()
	if strings.HasSuffix(location, "/") {
		return location + file
	}
	return filepath.Join(location, file)
}

// Restore reads file from the store (or from disk when the path is absolute),
// decodes it and executes the resulting script
func (r *Restorer) Restore(ctx context.Context, file string) error {
	script, err := r.Load(ctx, file)
	if err != nil {
		return err
	}
	return r.Execute(ctx, file, script)
}

// Load opens and decodes file and returns its SQL script.
// Nothing is sent to the database, so a missing file or passphrase fails before a connection exists.
func (r *Restorer) Load(ctx context.Context, file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", errors.NewParseError("backup file name is required", nil)
	}

	raw, err := r.open(ctx, file)
	if err != nil {
		return "", err
	}

	decoded, err := r.decoder.Decode(file, raw)
	if err != nil {
		return "", err
	}
	defer decoded.Close()

	start := time.Now()
	script, err := io.ReadAll(decoded)
	if err != nil {
		return "", NewDecodeError(file, "read", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"backup":   file,
		"bytes":    len(script),
		"duration": time.Since(start).String(),
	}).Debug("Backup decoded")

	if strings.TrimSpace(string(script)) == "" {
		return "", errors.NewDataAccessError(fmt.Sprintf("backup %s contains no SQL", file), nil).
			WithContext("backup", file)
	}

	return string(script), nil
}

// Execute runs a script produced by Load for file
func (r *Restorer) Execute(ctx context.Context, file, script string) (err error) {
	done := r.logger.LogOperationStart("restore_from_backup", map[string]interface{}{
		"backup": file,
		"target": r.Target(file),
		"bytes":  len(script),
	})
	defer func() { done(err) }()

	if err := r.executor.ExecScript(ctx, script); err != nil {
		return errors.WrapError(err, fmt.Sprintf("failed to restore from %s", file))
	}

	return nil
}

func (r *Restorer) open(ctx context.Context, file string) (io.ReadCloser, error) {
	if !filepath.IsAbs(file) {
		return r.store.Open(ctx, file)
	}

	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(file, err)
		}
		return nil, NewStorageError(fmt.Sprintf("failed to open backup %s", file), err)
	}
	return f, nil
}
