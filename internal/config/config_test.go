package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDELETE_COLLECTOR_MODE", "mock")

	cfg, err := Load("testdata/does-not-exist.env")

	require.NoError(t, err)
	assert.Equal(t, ModeMock, cfg.CollectorMode)
	assert.Equal(t, 55, cfg.RequestsPerMinute)
	assert.Equal(t, 5, cfg.MaxFetchAttempts)
	assert.Equal(t, 100, cfg.PageSize)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDELETE_COLLECTOR_MODE", "oauth")
	t.Setenv("REDDIT_CLIENT_ID", "client")
	t.Setenv("REDELETE_REQUESTS_PER_MINUTE", "30")
	t.Setenv("REDELETE_PAGE_SIZE", "25")

	cfg, err := Load("testdata/does-not-exist.env")

	require.NoError(t, err)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "mock", cfg: Config{CollectorMode: ModeMock, UserAgent: "ua", MaxFetchAttempts: 1}},
		{name: "oauth_without_client", cfg: Config{CollectorMode: ModeOAuth, UserAgent: "ua", MaxFetchAttempts: 1}, wantErr: true},
		{name: "api_partial", cfg: Config{CollectorMode: ModeAPI, ClientID: "id", UserAgent: "ua", MaxFetchAttempts: 1}, wantErr: true},
		{name: "unknown_mode", cfg: Config{CollectorMode: "public", UserAgent: "ua", MaxFetchAttempts: 1}, wantErr: true},
		{name: "zero_attempts", cfg: Config{CollectorMode: ModeMock, UserAgent: "ua"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
