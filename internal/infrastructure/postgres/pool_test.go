package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DBConfig{Host: "db.internal", Port: 5433, User: "ledger", Password: "x", DBName: "stock", SSLMode: "disable"}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host, "el host se usa tal cual, sin resolver")
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.NotNil(t, pc.AfterConnect)

	cfg.MaxConns = 1
	cfg.DatabaseURL = "postgres://u:p@other:5432/ledger?sslmode=disable"
	pc, err = poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "other", pc.ConnConfig.Host)
	assert.Equal(t, int32(1), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}
