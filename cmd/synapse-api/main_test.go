package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synapse-notes/backend/config"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, cmd.RunE)

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	flag := serve.Flags().Lookup("migrate")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestCommandsFailOnInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	for _, args := range [][]string{{"migrate"}, {"serve"}} {
		t.Run(args[0], func(t *testing.T) {
			cmd := newRootCommand()
			cmd.SetArgs(args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestInitLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		logger, err := initLogger(&config.Config{Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"}})
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("console", func(t *testing.T) {
		logger, err := initLogger(&config.Config{Observability: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"}})
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := initLogger(&config.Config{Observability: config.ObservabilityConfig{LogLevel: "loud"}})
		assert.Error(t, err)
	})
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         3000,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}}

	srv := newServer(cfg, nil)

	assert.Equal(t, "127.0.0.1:3000", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Minute, srv.WriteTimeout)
}
