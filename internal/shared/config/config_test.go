package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func setRequiredEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ENCRYPTION_KEY", testKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "polling", cfg.Bot.Mode)
	assert.Equal(t, 60, cfg.Bot.PollTimeout)
	assert.Equal(t, 7, cfg.Limits.MaxMatrix)
	assert.Equal(t, int64(1_000_000), cfg.Limits.MaxModulo)
	assert.Equal(t, 100, cfg.Limits.MaxElements)
	assert.Equal(t, int64(1_000_000_000_000), cfg.Limits.FactorizeMax)
	assert.Empty(t, cfg.Admins)
	assert.True(t, cfg.Postgres.AutoMigrate)
}

func TestLoad_AdminsAndLimits(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMINS", "42, 77;1001")
	t.Setenv("MAX_MATRIX", "5")
	t.Setenv("MAX_MODULO", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{42, 77, 1001}, cfg.Admins)
	assert.True(t, cfg.IsAdmin(77))
	assert.False(t, cfg.IsAdmin(78))
	assert.Equal(t, 5, cfg.Limits.MaxMatrix)
	assert.Equal(t, int64(5000), cfg.Limits.MaxModulo)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{"ENCRYPTION_KEY": testKey, "BOT_TOKEN": ""},
			wantErr: "Token",
		},
		{
			name:    "short key",
			env:     map[string]string{"BOT_TOKEN": "t", "ENCRYPTION_KEY": "abcd"},
			wantErr: "EncryptionKey",
		},
		{
			name:    "bad admin id",
			env:     map[string]string{"BOT_TOKEN": "t", "ENCRYPTION_KEY": testKey, "ADMINS": "12,abc"},
			wantErr: "ADMINS",
		},
		{
			name:    "webhook without url",
			env:     map[string]string{"BOT_TOKEN": "t", "ENCRYPTION_KEY": testKey, "BOT_MODE": "webhook"},
			wantErr: "BOT_WEBHOOK_URL",
		},
		{
			name:    "unknown mode",
			env:     map[string]string{"BOT_TOKEN": "t", "ENCRYPTION_KEY": testKey, "BOT_MODE": "push"},
			wantErr: "Mode",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantErr), "got %v", err)
		})
	}
}
