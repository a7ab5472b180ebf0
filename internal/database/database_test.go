package database

import (
	"context"
	"testing"
	"time"

	"bagvo/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	cfg := config.DatabaseConfig{
		Host:            "127.0.0.1",
		Port:            1,
		User:            "postgres",
		Database:        "bagvo",
		MaxConnections:  2,
		MinConnections:  1,
		MaxConnLifetime: 60,
	}

	start := time.Now()
	pool, err := NewPool(ctx, cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Less(t, time.Since(start), 5*time.Second, "gives up when the context ends")
}

func TestNewPool_Connects(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	cfg := pool.Config().ConnConfig
	dbCfg := config.DatabaseConfig{
		Host:            cfg.Host,
		Port:            int(cfg.Port),
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		MaxConnections:  4,
		MinConnections:  1,
		MaxConnLifetime: 60,
	}

	got, err := NewPool(ctx, dbCfg, zerolog.Nop())
	require.NoError(t, err)
	defer got.Close()

	assert.Equal(t, int32(4), got.Config().MaxConns)

	var one int
	require.NoError(t, got.QueryRow(ctx, `SELECT 1`).Scan(&one))
	assert.Equal(t, 1, one)
}
