package cmd

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const experimentTOML = `[info]
UserDefinedID = "ratio_sweep"
Name = "Ratio sweep"
Owner = "lab"

[parameters]
ratio = 0.5
runs = 10
`

func TestNewExperiment(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("ratio_sweep.toml", experimentTOML)

	env.mock.ExpectBegin()
	env.mock.ExpectExec("INSERT INTO Experiments ").
		WithArgs("ratio_sweep", "Ratio sweep", "", "lab", true).
		WillReturnResult(sqlmock.NewResult(42, 1))
	env.mock.ExpectExec("INSERT INTO ExperimentParameters ").
		WithArgs(int64(42), "ratio", "0.5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("INSERT INTO ExperimentParameters ").
		WithArgs(int64(42), "runs", "10").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()
	env.mock.ExpectClose()

	require.NoError(t, env.run("new-experiment", path))

	assert.Equal(t, "✓ Created experiment \"ratio_sweep\" (id 42)\n", env.stdout.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())
	require.Len(t, env.dsns, 1)
	assert.Contains(t, env.dsns[0], "lab:secret@tcp(db.example.com:3306)/experiments")
	assert.NotContains(t, env.dsns[0], "multiStatements")
}

func TestNewExperiment_FileFlag(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("bare.yaml", "info:\n  UserDefinedID: bare\n")

	env.mock.ExpectBegin()
	env.mock.ExpectExec("INSERT INTO Experiments ").
		WithArgs("bare", "", "", "", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectCommit()
	env.mock.ExpectClose()

	require.NoError(t, env.run("new-experiment", "-f", path))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestNewExperiment_InvalidFileTouchesNoDatabase(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("nested.toml", "[info]\nUserDefinedID = \"x\"\n\n[parameters.group]\nratio = 1\n")

	err := env.run("new-experiment", path)
	require.Error(t, err)
	assert.Contains(t, env.stderr.String(), "Error: invalid experiment configuration")
	assert.Empty(t, env.dsns)
}

func TestNewExperiment_Arguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"new-experiment"}, "expected the following"},
		{"too many files", []string{"new-experiment", "a.toml", "b.toml"}, "expected one config file"},
		{"argument and flag differ", []string{"new-experiment", "a.toml", "-f", "b.toml"}, "both as argument and --file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			require.Error(t, env.run(tt.args...))
			assert.Contains(t, env.stderr.String(), tt.want)
		})
	}
}

func TestDeleteExperiment(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("ratio_sweep.toml", experimentTOML)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT ExperimentID FROM Experiments WHERE UserDefinedID = ?")).
		WithArgs("ratio_sweep").
		WillReturnRows(sqlmock.NewRows([]string{"ExperimentID"}).AddRow(42))
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ExperimentParameters WHERE ExperimentID = ?")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Experiments WHERE ExperimentID = ?")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()
	env.mock.ExpectClose()

	require.NoError(t, env.run("delete-experiment", path))

	assert.Equal(t, "✓ Deleted experiment \"ratio_sweep\"\n", env.stdout.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteExperiment_NotFound(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("ratio_sweep.toml", experimentTOML)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT ExperimentID FROM Experiments WHERE UserDefinedID = ?")).
		WithArgs("ratio_sweep").
		WillReturnRows(sqlmock.NewRows([]string{"ExperimentID"}))
	env.mock.ExpectRollback()
	env.mock.ExpectClose()

	err := env.run("delete-experiment", path)
	require.Error(t, err)
	assert.Contains(t, env.stderr.String(), "not found")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteExperiment_MissingDatabaseSettings(t *testing.T) {
	env := newTestEnv(t)
	env.configPath = env.writeFile("empty.yaml", "log:\n  level: quiet\n")
	path := env.writeFile("ratio_sweep.toml", experimentTOML)

	err := env.run("delete-experiment", path)
	require.Error(t, err)
	assert.Contains(t, env.stderr.String(), "Error: invalid database configuration")
	assert.Empty(t, env.dsns)
}
