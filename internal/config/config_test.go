package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("JWT_REFRESH_EXPIRES_IN", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "1h", cfg.Auth.AccessExpiresIn)
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window())
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Run("access secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_REFRESH_SECRET", "refresh")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingSecret))
	})

	t.Run("refresh secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "access")
		t.Setenv("JWT_REFRESH_SECRET", "")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingSecret))
	})
}

func TestLoad_InvalidLifetime(t *testing.T) {
	setSecrets(t)
	t.Setenv("JWT_EXPIRES_IN", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRES_IN")
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	setSecrets(t)
	t.Setenv("AUTH_BCRYPT_COST", "2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_BCRYPT_COST")

	t.Setenv("AUTH_BCRYPT_COST", "10")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestParseLifetime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1h", want: time.Hour},
		{in: "15m", want: 15 * time.Minute},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: " 30s ", want: 30 * time.Second},
		{in: "", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "0d", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseLifetime(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
