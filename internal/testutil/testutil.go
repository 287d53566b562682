// Package testutil opens migrated in-memory databases for service and
// handler tests.
package testutil

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/migration"
	"github.com/smallbiznis/birracraft/pkg/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func NewNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}
