package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "opsdash-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.BMS.PageSize)
	assert.Equal(t, time.Hour, cfg.BMS.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Sync.SupplierInterval)
	assert.Equal(t, 6, cfg.Forecast.AnalysisMonths)
	assert.Equal(t, 2, cfg.Forecast.CoverageMonths)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsInterval)
	assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.SlowQueryThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OPSDASH_DATABASE_HOST", "db.internal")
	t.Setenv("OPSDASH_BMS_BASE_URL", "https://bms.example.com")
	t.Setenv("OPSDASH_FORECAST_ANALYSIS_MONTHS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "https://bms.example.com", cfg.BMS.BaseURL)
	assert.Equal(t, 12, cfg.Forecast.AnalysisMonths)
}

func TestLoad_SyncEnabledRequiresBaseURL(t *testing.T) {
	t.Setenv("OPSDASH_SYNC_ENABLED", "true")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bms.base_url")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "idle conns exceed open conns",
			mutate:  func(c *Config) { c.Database.MaxIdleConns = 50 },
			wantErr: "max_idle_conns",
		},
		{
			name: "sync interval too short",
			mutate: func(c *Config) {
				c.Sync.Enabled = true
				c.BMS.BaseURL = "https://bms.example.com"
				c.Sync.Interval = time.Second
			},
			wantErr: "sync.interval",
		},
		{
			name:    "analysis months too small",
			mutate:  func(c *Config) { c.Forecast.AnalysisMonths = 1 },
			wantErr: "analysis_months",
		},
		{
			name:    "sampling ratio out of range",
			mutate:  func(c *Config) { c.Telemetry.SamplingRatio = 1.5 },
			wantErr: "sampling_ratio",
		},
		{
			name: "production requires db password",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Database.SSLMode = "require"
			},
			wantErr: "database.password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "opsdash",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
