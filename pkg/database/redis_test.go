package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shefa-net/steward-engine/pkg/config"
	"github.com/shefa-net/steward-engine/pkg/database"
)

func TestNewRedisClient_NotConfigured(t *testing.T) {
	client, err := database.NewRedisClient(&config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	client, err := database.NewRedisClient(&config.RedisConfig{
		Host: "127.0.0.1",
		Port: 1, // nothing listens here
	})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
