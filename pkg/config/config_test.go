package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "cart", cfg.Store.Key)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 720*time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.App.IsDev())

	unit, err := cfg.Checkout.Unit()
	require.NoError(t, err)
	assert.Equal(t, currency.INR.String(), unit.String())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantError string
	}{
		{
			name:      "postgres without dsn: error",
			env:       map[string]string{"SPICECART_STORE_DRIVER": StorePostgres},
			wantError: "postgres store requires SPICECART_DB_DSN",
		},
		{
			name:      "redis without address: error",
			env:       map[string]string{"SPICECART_STORE_DRIVER": StoreRedis},
			wantError: "redis store requires SPICECART_REDIS_URL or SPICECART_REDIS_ADDR",
		},
		{
			name:      "unknown driver: error",
			env:       map[string]string{"SPICECART_STORE_DRIVER": "sqlite"},
			wantError: `unknown store driver "sqlite"`,
		},
		{
			name: "redis with url: ok",
			env: map[string]string{
				"SPICECART_STORE_DRIVER": StoreRedis,
				"SPICECART_REDIS_URL":    "redis://localhost:6379/0",
			},
		},
		{
			name: "bad currency: error",
			env: map[string]string{
				"SPICECART_CURRENCY": "XXXX",
			},
			wantError: "currency[XXXX] is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}
