package main

import (
	"testing"

	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSnowflakeUsesConfiguredNode(t *testing.T) {
	a, err := RegisterSnowflake(config.Config{NodeID: 3})
	require.NoError(t, err)
	b, err := RegisterSnowflake(config.Config{NodeID: 4})
	require.NoError(t, err)

	assert.Equal(t, int64(3), a.Generate().Node())
	assert.Equal(t, int64(4), b.Generate().Node())

	_, err = RegisterSnowflake(config.Config{NodeID: 1024})
	assert.Error(t, err)
}
