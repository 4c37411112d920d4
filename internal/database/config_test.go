package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  DatabaseConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Username: "root",
				Password: "password",
				Database: "experiments",
				Timeout:  30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "missing host",
			config: DatabaseConfig{
				Port:     3306,
				Username: "root",
				Database: "experiments",
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     70000,
				Username: "root",
				Database: "experiments",
			},
			wantErr: true,
		},
		{
			name: "missing username",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "experiments",
			},
			wantErr: true,
		},
		{
			name: "missing database",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Username: "root",
			},
			wantErr: true,
		},
		{
			name: "empty password allowed",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Username: "root",
				Database: "experiments",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_SetDefaults(t *testing.T) {
	config := DatabaseConfig{Host: "db"}
	config.SetDefaults()

	assert.Equal(t, DefaultPort, config.Port)
	assert.Equal(t, DefaultTimeout, config.Timeout)
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)

	custom := DatabaseConfig{Port: 3307, Timeout: time.Second, MaxRetries: 1}
	custom.SetDefaults()

	assert.Equal(t, 3307, custom.Port)
	assert.Equal(t, time.Second, custom.Timeout)
	assert.Equal(t, 1, custom.MaxRetries)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "db.internal",
		Port:     3307,
		Username: "app",
		Password: "p@ss:word",
		Database: "experiments",
		Timeout:  5 * time.Second,
	}

	parsed, err := mysql.ParseDSN(config.DSN(false))
	require.NoError(t, err)

	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "experiments", parsed.DBName)
	assert.Equal(t, 5*time.Second, parsed.Timeout)
	assert.True(t, parsed.ParseTime)
	assert.False(t, parsed.MultiStatements)

	withMulti, err := mysql.ParseDSN(config.DSN(true))
	require.NoError(t, err)
	assert.True(t, withMulti.MultiStatements)
}
