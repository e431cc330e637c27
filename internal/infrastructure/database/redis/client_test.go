package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

func TestNewClient_Standalone_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr(), KeyPrefix: "keyipc:"}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.False(t, client.IsCluster())
	assert.Equal(t, "keyipc:", client.KeyPrefix())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	client, err := NewClient(&RedisConfig{Mode: "standalone", Addr: "127.0.0.1:1"}, logging.NewNopLogger())
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
	assert.Equal(t, ErrClientClosed, client.Ping(context.Background()))
}

func TestClientLimiter_AgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr(), KeyPrefix: "keyipc:"}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	l := NewClientLimiter(client, "uspto", 100, 1, 0, logging.NewNopLogger())
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}

	var found bool
	for _, k := range mr.Keys() {
		if len(k) > len("keyipc:uspto:") && k[:len("keyipc:uspto:")] == "keyipc:uspto:" {
			found = true
		}
	}
	assert.True(t, found, "window key should be namespaced by the client prefix")
}

//Personal.AI order the ending
