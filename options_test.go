package threadpool

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcustut/threadpool/metrics"
)

func TestOptions_Invalid(t *testing.T) {
	cases := map[string]Option{
		"shards zero":          WithShards(0),
		"unknown strategy":     WithStrategy(Strategy(99)),
		"nil metrics provider": WithMetrics(nil),
		"negative timeout":     WithStopTimeout(-time.Second),
		"nil clone func":       WithCloneState[int](nil),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New[string, int, int](0, opt)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOptions_Applied(t *testing.T) {
	logger := slog.Default()
	provider := metrics.NewBasicProvider()

	p, err := New[string, int, int](
		0,
		WithStrategy(StrategySharded),
		WithShards(5),
		WithStopTimeout(3*time.Second),
		WithLogger(logger),
		WithMetrics(provider),
	)
	require.NoError(t, err)
	require.Equal(t, StrategySharded, p.config.Strategy)
	require.Equal(t, uint(5), p.config.Shards)
	require.Equal(t, 3*time.Second, p.config.StopTimeout)
	require.Same(t, logger, p.logger)
	require.Same(t, provider, p.config.Metrics)
}

func TestOptions_NilOptionIgnored(t *testing.T) {
	p, err := New[string, int, int](0, nil, WithShards(2))
	require.NoError(t, err)
	require.Equal(t, uint(2), p.config.Shards)
}
