package backup

import (
	"context"
	"io"
)

// Store lists and opens the backup files of one storage backend
type Store interface {
	// List returns every backup file, sorted by creation time then name
	List(ctx context.Context) ([]Descriptor, error)

	// Open returns the raw contents of the named backup
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Location describes the store for messages, e.g. s3://bucket/prefix/
	Location() string

	// Close releases the store's client
	Close() error
}

// ScriptExecutor runs a decoded SQL script against the database
type ScriptExecutor interface {
	ExecScript(ctx context.Context, script string) error
}

// ScriptExecutorFunc adapts a function to ScriptExecutor
type ScriptExecutorFunc func(ctx context.Context, script string) error

// ExecScript calls f(ctx, script)
func (f ScriptExecutorFunc) ExecScript(ctx context.Context, script string) error {
	return f(ctx, script)
}
