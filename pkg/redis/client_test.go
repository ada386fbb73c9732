package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := Config{Host: mr.Host(), Port: port}
	assert.True(t, cfg.Enabled())

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()

	_, err := NewClient(context.Background(), Config{Host: "127.0.0.1", Port: port})
	assert.Error(t, err)
}

func TestConfig_Disabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.Equal(t, "localhost:6379", Config{Host: "localhost", Port: 6379}.Addr())
}
