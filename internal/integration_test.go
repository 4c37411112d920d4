package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/database"
	"experiment-setup/internal/experiment"
	"experiment-setup/internal/logging"

	_ "github.com/go-sql-driver/mysql"
)

const integrationDatabase = "experiment_setup_it"

const experimentTablesSQL = `
CREATE TABLE IF NOT EXISTS Experiments (
    ExperimentID INT AUTO_INCREMENT PRIMARY KEY,
    UserDefinedID VARCHAR(64) NOT NULL UNIQUE,
    Name VARCHAR(255) NOT NULL DEFAULT '',
    Description TEXT,
    Owner VARCHAR(255) NOT NULL DEFAULT '',
    Enabled BOOLEAN NOT NULL DEFAULT TRUE,
    CreatedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS ExperimentParameters (
    ExperimentID INT NOT NULL,
    ParameterName VARCHAR(255) NOT NULL,
    ParamValueTxt TEXT,
    PRIMARY KEY (ExperimentID, ParameterName),
    FOREIGN KEY (ExperimentID) REFERENCES Experiments(ExperimentID)
);
`

// TestIntegrationEndToEnd runs the experiment and restore workflows against a real MySQL server
func TestIntegrationEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	config := getTestConfig(t)
	if config == nil {
		t.Skip("Integration test configuration not available")
	}

	setupTestDatabase(t, *config)
	defer cleanupTestDatabase(t, *config)

	t.Run("Restore Creates Tables", func(t *testing.T) {
		testRestoreWorkflow(t, *config)
	})

	t.Run("Experiment Lifecycle", func(t *testing.T) {
		testExperimentWorkflow(t, *config)
	})
}

func testRestoreWorkflow(t *testing.T, config database.DatabaseConfig) {
	ctx := context.Background()
	logger := logging.NewNopLogger()
	dbService := database.NewService(logger)

	db, err := dbService.Connect(ctx, config, true)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbService.Close(db)

	dir := t.TempDir()
	compressed, err := backup.Compress([]byte(experimentTablesSQL), backup.CompressionTypeForExt(backup.ExtGzip))
	if err != nil {
		t.Fatalf("Failed to compress backup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "schema_2024-01-01.bak.gz"), compressed, 0o644); err != nil {
		t.Fatalf("Failed to write backup: %v", err)
	}

	store, err := backup.NewLocalStore(&backup.LocalConfig{BasePath: dir})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	executor := backup.ScriptExecutorFunc(func(ctx context.Context, script string) error {
		return dbService.ExecScript(ctx, db, script)
	})
	restorer := backup.NewRestorer(store, backup.NewDecoder(""), executor, logger)

	if err := restorer.Restore(ctx, "schema_2024-01-01.bak.gz"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	for _, table := range []string{"Experiments", "ExperimentParameters"} {
		var count int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			config.Database, table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to query information_schema: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected table %s to exist after restore", table)
		}
	}
}

func testExperimentWorkflow(t *testing.T, config database.DatabaseConfig) {
	ctx := context.Background()
	logger := logging.NewNopLogger()
	dbService := database.NewService(logger)

	db, err := dbService.Connect(ctx, config, false)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbService.Close(db)

	cfg, err := experiment.Parse([]byte(`
[info]
UserDefinedID = "it_ratio_sweep"
Owner = "integration"

[parameters]
ratio = 0.25
enabled = false
`), ".toml")
	if err != nil {
		t.Fatalf("Failed to parse experiment: %v", err)
	}

	repo := experiment.NewRepository(db, logger)

	id, err := repo.Create(ctx, cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	params := readParameters(t, db, id)
	if params["ratio"] != "0.25" || params["enabled"] != "0" {
		t.Errorf("Unexpected stored parameters: %v", params)
	}

	if _, err := repo.Create(ctx, cfg); err == nil {
		t.Error("Expected duplicate experiment to fail")
	}

	if err := repo.Delete(ctx, cfg.Name()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(readParameters(t, db, id)) != 0 {
		t.Error("Expected parameters to be deleted")
	}

	if err := repo.Delete(ctx, cfg.Name()); err == nil {
		t.Error("Expected deleting a missing experiment to fail")
	}
}

func readParameters(t *testing.T, db *sql.DB, id int64) map[string]string {
	t.Helper()

	rows, err := db.Query("SELECT ParameterName, ParamValueTxt FROM ExperimentParameters WHERE ExperimentID = ?", id)
	if err != nil {
		t.Fatalf("Failed to read parameters: %v", err)
	}
	defer rows.Close()

	params := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			t.Fatalf("Failed to scan parameter: %v", err)
		}
		params[name] = value
	}
	return params
}

func getTestConfig(t *testing.T) *database.DatabaseConfig {
	// Check for environment variables or skip if not available
	host := os.Getenv("MYSQL_TEST_HOST")
	if host == "" {
		host = "localhost"
	}

	username := os.Getenv("MYSQL_TEST_USER")
	if username == "" {
		username = "root"
	}

	password := os.Getenv("MYSQL_TEST_PASSWORD")
	if password == "" {
		password = "password"
	}

	systemConfig := database.DatabaseConfig{
		Host:     host,
		Port:     database.DefaultPort,
		Username: username,
		Password: password,
		Database: "mysql",
		Timeout:  5 * time.Second,
	}

	db, err := sql.Open("mysql", systemConfig.DSN(false))
	if err != nil {
		t.Logf("MySQL not available for integration tests: %v", err)
		return nil
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Logf("MySQL not available for integration tests: %v", err)
		return nil
	}

	config := systemConfig
	config.Database = integrationDatabase
	config.MaxRetries = 1
	return &config
}

func setupTestDatabase(t *testing.T, config database.DatabaseConfig) {
	systemConfig := config
	systemConfig.Database = "mysql"

	systemDB, err := sql.Open("mysql", systemConfig.DSN(false))
	if err != nil {
		t.Fatalf("Failed to connect to MySQL system database: %v", err)
	}
	defer systemDB.Close()

	if _, err := systemDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", config.Database)); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if _, err := systemDB.Exec(fmt.Sprintf("CREATE DATABASE %s", config.Database)); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
}

func cleanupTestDatabase(t *testing.T, config database.DatabaseConfig) {
	systemConfig := config
	systemConfig.Database = "mysql"

	systemDB, err := sql.Open("mysql", systemConfig.DSN(false))
	if err != nil {
		t.Logf("Failed to connect for cleanup: %v", err)
		return
	}
	defer systemDB.Close()

	if _, err := systemDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", config.Database)); err != nil {
		t.Logf("Failed to drop test database: %v", err)
	}
}
