package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"payment-terminal-bridge/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	client, err := NewClient(context.Background(), config.RedisConfig{Host: s.Host(), Port: port}, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	host := s.Host()
	s.Close()

	_, err = NewClient(context.Background(), config.RedisConfig{Host: host, Port: port}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(config.RedisConfig{
		Host:        "cache",
		Port:        6380,
		DB:          2,
		DialTimeout: 3 * time.Second,
		ReadTimeout: time.Second,
	})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "terminal-bridge", opts.ClientName)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Zero(t, opts.WriteTimeout)
}
