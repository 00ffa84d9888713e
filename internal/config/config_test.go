package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "STORAGE_SQLITE_PATH",
		"MONGODB_URI", "MONGODB_DB_NAME", "MONGODB_COLLECTION",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "GOOGLE_SHEET_STATE_TAB",
		"PIPELINE_LATENCY", "REPORT_CRON_SCHEDULE", "TIMEZONE",
		"NOTIFY_WEBHOOK_URL", "NOTIFY_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "flockbook.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pipeline.Latency)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "UTC", cfg.Reporting.Timezone)
	assert.False(t, cfg.Notify.Enabled())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty ones.
	for _, key := range []string{"STORAGE_DRIVER", "PIPELINE_LATENCY", "NOTIFY_WEBHOOK_URL"} {
		require.NoError(t, os.Unsetenv(key))
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_DRIVER=memory\nPIPELINE_LATENCY=250ms\nNOTIFY_WEBHOOK_URL=http://hooks.local/summary\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("STORAGE_DRIVER")
		_ = os.Unsetenv("PIPELINE_LATENCY")
		_ = os.Unsetenv("NOTIFY_WEBHOOK_URL")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Latency)
	assert.True(t, cfg.Notify.Enabled())
}

func TestLoad_InvalidLatency(t *testing.T) {
	clearEnv(t)
	t.Setenv("PIPELINE_LATENCY", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "PIPELINE_LATENCY")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: DriverMemory},
			MongoDB:   MongoDBConfig{DBName: "flockbook", Collection: "state"},
			Sheets:    SheetsConfig{StateTab: "State"},
			Pipeline:  PipelineConfig{Latency: time.Second},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
		{name: "negative latency", mutate: func(c *Config) { c.Pipeline.Latency = -time.Second }, wantErr: "PIPELINE_LATENCY"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "STORAGE_DRIVER"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Driver = DriverSQLite }, wantErr: "STORAGE_SQLITE_PATH"},
		{name: "mongodb without uri", mutate: func(c *Config) { c.Storage.Driver = DriverMongoDB }, wantErr: "MONGODB_URI"},
		{name: "sheets without credentials", mutate: func(c *Config) { c.Storage.Driver = DriverSheets }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "bad timezone", mutate: func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, wantErr: "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
