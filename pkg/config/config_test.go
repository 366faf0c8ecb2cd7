package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.App.Storage)
	assert.Equal(t, 30, cfg.Ledger.NearExpiryDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Ledger.NearExpiryHorizon())
	assert.Equal(t, 20, cfg.Ledger.RecentTransactions)
	assert.False(t, cfg.Ledger.BlockExpiredIssue)
	assert.Equal(t, DeductionPolicyQueue, cfg.Pharmacy.DeductionPolicy)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("LEDGER_NEAR_EXPIRY_DAYS", "45")
	v.Set("LEDGER_BLOCK_EXPIRED_ISSUE", "true")
	v.Set("PHARMACY_DEDUCTION_POLICY", "strict")
	v.Set("HTTP_PORT", 9090)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.App.Storage)
	assert.Equal(t, 45, cfg.Ledger.NearExpiryDays)
	assert.True(t, cfg.Ledger.BlockExpiredIssue)
	assert.Equal(t, DeductionPolicyStrict, cfg.Pharmacy.DeductionPolicy)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestFromViper_ValoresInvalidos(t *testing.T) {
	cases := map[string]string{
		"STORAGE_DRIVER":            "sqlite",
		"PHARMACY_DEDUCTION_POLICY": "ignore",
		"LEDGER_NEAR_EXPIRY_DAYS":   "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			v.Set(key, val)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "ledger", Password: "p@ss/word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://ledger:p%40ss%2Fword@db:5432/stock?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
