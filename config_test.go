package threadpool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	require.Equal(t, StrategyLocked, cfg.Strategy)
	require.Equal(t, defaultShards, cfg.Shards)
	require.Zero(t, cfg.StopTimeout)
	require.Nil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
	require.Nil(t, cfg.CloneState)
	require.NoError(t, validateConfig(&cfg))
}

func TestConfig_Apply(t *testing.T) {
	cfg := defaultConfig()
	err := Config{Strategy: "sharded", Shards: 7, StopTimeout: "250ms"}.apply(&cfg)
	require.NoError(t, err)
	require.Equal(t, StrategySharded, cfg.Strategy)
	require.Equal(t, uint(7), cfg.Shards)
	require.Equal(t, 250*time.Millisecond, cfg.StopTimeout)

	// zero values leave the defaults alone
	cfg = defaultConfig()
	require.NoError(t, Config{}.apply(&cfg))
	require.Equal(t, StrategyLocked, cfg.Strategy)
	require.Equal(t, defaultShards, cfg.Shards)

	cfg = defaultConfig()
	require.ErrorIs(t, Config{Strategy: "optimistic"}.apply(&cfg), ErrInvalidConfig)

	cfg = defaultConfig()
	require.ErrorIs(t, Config{StopTimeout: "soon"}.apply(&cfg), ErrInvalidConfig)
}

func TestConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("strategy: sharded\nshards: 16\nstop_timeout: 2s\n"), 0o600))

	c, err := ConfigFromFile(yamlPath)
	require.NoError(t, err)
	require.Equal(t, Config{Strategy: "sharded", Shards: 16, StopTimeout: "2s"}, c)

	jsonPath := filepath.Join(dir, "pool.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"strategy":"locked","shards":4}`), 0o600))

	c, err = ConfigFromFile(jsonPath)
	require.NoError(t, err)
	require.Equal(t, Config{Strategy: "locked", Shards: 4}, c)

	txtPath := filepath.Join(dir, "pool.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("strategy=locked"), 0o600))
	_, err = ConfigFromFile(txtPath)
	require.ErrorContains(t, err, "unsupported config file extension")

	_, err = ConfigFromFile(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestNew_WithConfig(t *testing.T) {
	p, err := New[string, int, int](
		0,
		WithConfig(Config{Strategy: "sharded", Shards: 2, StopTimeout: "1s"}),
	)
	require.NoError(t, err)
	require.Equal(t, StrategySharded, p.config.Strategy)
	require.Equal(t, uint(2), p.config.Shards)
	require.Equal(t, time.Second, p.config.StopTimeout)
	require.IsType(t, &shardedTable[string, *worker[string, int]]{}, p.workers)

	// explicit options later in the chain win
	p, err = New[string, int, int](
		0,
		WithConfig(Config{Strategy: "sharded"}),
		WithStrategy(StrategyLocked),
	)
	require.NoError(t, err)
	require.Equal(t, StrategyLocked, p.config.Strategy)
}
