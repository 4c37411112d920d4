package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/confirmation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restoreScript = "DROP TABLE IF EXISTS Experiments;\nCREATE TABLE Experiments (ExperimentID INT PRIMARY KEY);\n"

func seedBackups(env *testEnv) {
	env.writeBackup("A_2023-02-01.bak", "a", utc("2023-02-01T10:00:00"))
	env.writeBackup("B_2023-03-01.bak.gz", "b", utc("2023-03-01T10:00:00"))
	env.writeBackup("C_2023-05-01.bak", "c", utc("2023-05-01T10:00:00"))
	env.writeBackup("notes.txt", "x", utc("2023-03-02T10:00:00"))
}

func TestListBackups(t *testing.T) {
	env := newTestEnv(t)
	seedBackups(env)

	require.NoError(t, env.run("list-backups"))
	assert.Equal(t,
		"A_2023-02-01.bak\t2023-02-01T10:00:00\n"+
			"B_2023-03-01.bak.gz\t2023-03-01T10:00:00\n"+
			"C_2023-05-01.bak\t2023-05-01T10:00:00\n",
		env.stdout.String())
}

func TestListBackups_Filters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"date range", []string{"--start", "2023-02-15", "--end", "2023-03-31"}, "B_2023-03-01.bak.gz\t2023-03-01T10:00:00\n"},
		{"date-only end includes the day", []string{"--end", "2023-03-01"}, "A_2023-02-01.bak\t2023-02-01T10:00:00\nB_2023-03-01.bak.gz\t2023-03-01T10:00:00\n"},
		{"pattern", []string{"--regex", "/C_/"}, "C_2023-05-01.bak\t2023-05-01T10:00:00\n"},
		{"no matches", []string{"--start", "2024-01-01"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedBackups(env)

			require.NoError(t, env.run(append([]string{"list-backups"}, tt.args...)...))
			assert.Equal(t, tt.want, env.stdout.String())
		})
	}
}

func TestListBackups_JSON(t *testing.T) {
	env := newTestEnv(t)
	seedBackups(env)

	require.NoError(t, env.run("list-backups", "--format", "json", "--regex", "/A/"))

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "A_2023-02-01.bak", entries[0]["filename"])
	assert.Equal(t, "2023-02-01T10:00:00", entries[0]["created_at"])
}

func TestListBackups_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad start", []string{"--start", "03/01/2023"}, "Error: "},
		{"start after end", []string{"--start", "2023-04-01", "--end", "2023-03-01"}, "Error: "},
		{"pattern without slashes", []string{"--regex", "C_"}, "Error: "},
		{"fractional seconds", []string{"--end", "2023-03-01T10:00:00.5"}, "Error: invalid end time"},
		{"bad format", []string{"--format", "table"}, "Error: invalid --format"},
		{"positional argument", []string{"extra"}, "Error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedBackups(env)

			require.Error(t, env.run(append([]string{"list-backups"}, tt.args...)...))
			assert.Contains(t, env.stderr.String(), tt.want)
			assert.Empty(t, env.stdout.String())
		})
	}
}

func TestRestoreFromBackup_AssumeYes(t *testing.T) {
	env := newTestEnv(t)
	env.writeBackup("B_2023-03-01.bak", restoreScript, utc("2023-03-01T10:00:00"))

	env.mock.ExpectExec("DROP TABLE IF EXISTS Experiments").WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectClose()

	require.NoError(t, env.run("restore-from-backup", "B_2023-03-01.bak", "--yes"))

	assert.NoError(t, env.mock.ExpectationsWereMet())
	require.Len(t, env.dsns, 1)
	assert.Contains(t, env.dsns[0], "multiStatements=true")
	assert.Contains(t, env.stdout.String(), "Restored database from "+filepath.Join(env.backupDir, "B_2023-03-01.bak"))
}

func TestRestoreFromBackup_Confirmed(t *testing.T) {
	env := newTestEnv(t)
	env.interactive = true
	env.stdin = "yes\n"

	compressed, err := backup.Compress([]byte(restoreScript), backup.CompressionTypeForExt(backup.ExtZstd))
	require.NoError(t, err)
	env.writeBackup("B_2023-03-01.bak.zst", string(compressed), utc("2023-03-01T10:00:00"))

	env.mock.ExpectExec("CREATE TABLE Experiments").WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectClose()

	require.NoError(t, env.run("restore-from-backup", "B_2023-03-01.bak.zst"))

	assert.Contains(t, env.stdout.String(), "type 'yes' to confirm: ")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRestoreFromBackup_Declined(t *testing.T) {
	env := newTestEnv(t)
	env.interactive = true
	env.stdin = "no\n"
	env.writeBackup("B_2023-03-01.bak", restoreScript, utc("2023-03-01T10:00:00"))

	require.NoError(t, env.run("restore-from-backup", "B_2023-03-01.bak"))

	assert.Contains(t, env.stdout.String(), confirmation.DeclinedMessage)
	assert.Empty(t, env.dsns, "no connection is opened")
}

func TestRestoreFromBackup_NonInteractive(t *testing.T) {
	env := newTestEnv(t)
	env.writeBackup("B_2023-03-01.bak", restoreScript, utc("2023-03-01T10:00:00"))

	require.Error(t, env.run("restore-from-backup", "B_2023-03-01.bak"))

	assert.Contains(t, env.stderr.String(), "--yes")
	assert.Empty(t, env.dsns)
}

func TestRestoreFromBackup_NotFound(t *testing.T) {
	env := newTestEnv(t)

	require.Error(t, env.run("restore-from-backup", "missing.bak", "--yes"))
	assert.Contains(t, env.stderr.String(), "Error: backup missing.bak not found")
	assert.Empty(t, env.dsns, "no connection is opened for a missing backup")
}

func TestRestoreFromBackup_EncryptedNeedsPassphrase(t *testing.T) {
	env := newTestEnv(t)
	sealed, err := backup.Encrypt([]byte(restoreScript), "pw")
	require.NoError(t, err)
	env.writeBackup("B.bak.enc", string(sealed), utc("2023-03-01T10:00:00"))

	require.Error(t, env.run("restore-from-backup", "B.bak.enc", "--yes"))
	assert.Contains(t, env.stderr.String(), "Error: ")
	assert.Empty(t, env.dsns, "no connection is opened before the backup decodes")
}

func TestRestoreFromBackup_Arguments(t *testing.T) {
	env := newTestEnv(t)

	require.Error(t, env.run("restore-from-backup"))
	assert.Contains(t, env.stderr.String(), "expected the following")
}

func TestRestoreFromBackup_HelpStatesPacketLimit(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.run("restore-from-backup", "--help"))
	assert.Contains(t, env.stdout.String(), "max_allowed_packet")
}
