package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 20, cfg.Server.PageSize)
	assert.Equal(t, 100, cfg.Server.MaxInFlight)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.Equal(t, "postgres://postgres:@localhost:5432/budgetflow?sslmode=disable", cfg.ConnectionString())
}

func TestLoad(t *testing.T) {
	type args struct {
		env map[string]string
	}

	type testCase struct {
		name    string
		args    args
		verify  func(t *testing.T, cfg *config.Config)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Overrides",
			args: args{env: map[string]string{
				"STORE_DRIVER":         "memory",
				"STORE_TIMEOUT":        "500ms",
				"CORS_ALLOWED_ORIGINS": "http://a.test,http://b.test",
				"LOG_LEVEL":            "DEBUG",
				"LOG_FORMAT":           "json",
				"TUI_USER_ID":          "7",
			}},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
				assert.Equal(t, 500*time.Millisecond, cfg.Store.Timeout)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
				assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
				assert.Equal(t, int64(7), cfg.TUI.UserID)
			},
		},
		{
			name:    "UnknownDriver",
			args:    args{env: map[string]string{"STORE_DRIVER": "sqlite"}},
			wantErr: true,
		},
		{
			name:    "UnknownLogFormat",
			args:    args{env: map[string]string{"LOG_FORMAT": "xml"}},
			wantErr: true,
		},
		{
			name:    "NonPositiveTimeout",
			args:    args{env: map[string]string{"STORE_TIMEOUT": "0s"}},
			wantErr: true,
		},
		{
			name:    "Malformed",
			args:    args{env: map[string]string{"PORT": "http"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.args.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}
