package cmd

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/database"
	apperrors "experiment-setup/internal/errors"
	"experiment-setup/internal/logging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// testEnv runs commands against a temp backup directory and a sqlmock database
type testEnv struct {
	t           *testing.T
	dir         string
	backupDir   string
	configPath  string
	stdin       string
	interactive bool
	stdout      bytes.Buffer
	stderr      bytes.Buffer
	db          *sql.DB
	mock        sqlmock.Sqlmock
	dsns        []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		t:          t,
		dir:        dir,
		backupDir:  filepath.Join(dir, "backups"),
		configPath: filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, os.Mkdir(env.backupDir, 0o755))

	config := fmt.Sprintf(`database:
  host: db.example.com
  username: lab
  password: secret
  database: experiments
backup:
  storage:
    provider: local
    local:
      base_path: %s
  location: UTC
log:
  level: quiet
`, env.backupDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(config), 0o600))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	env.db = db
	env.mock = mock

	return env
}

func (e *testEnv) deps() dependencies {
	return dependencies{
		newDatabaseService: func(logger *logging.Logger) *database.Service {
			open := func(driverName, dsn string) (*sql.DB, error) {
				e.dsns = append(e.dsns, dsn)
				return e.db, nil
			}
			return database.NewServiceWithOptions(logger, open, apperrors.RetryConfig{
				MaxAttempts: 1,
				BaseDelay:   time.Millisecond,
				MaxDelay:    time.Millisecond,
				Multiplier:  1,
			})
		},
		openStore: backup.NewStore,
		isInteractive: func() bool {
			return e.interactive
		},
	}
}

func (e *testEnv) run(args ...string) error {
	e.t.Helper()

	e.stdout.Reset()
	e.stderr.Reset()

	opts := newRootOptions(strings.NewReader(e.stdin), &e.stdout, &e.stderr, e.deps())
	root := NewRootCommand(opts)
	root.SetArgs(append([]string{"--config", e.configPath, "--no-color"}, args...))

	err := root.Execute()
	if err != nil {
		opts.printError(err)
	}
	return err
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) writeBackup(name, content string, created time.Time) {
	e.t.Helper()
	path := filepath.Join(e.backupDir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(e.t, os.Chtimes(path, created, created))
}

func utc(ts string) time.Time {
	t, err := time.Parse(backup.TimestampLayout, ts)
	if err != nil {
		panic(err)
	}
	return t
}
