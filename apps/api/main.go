package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/migration"
	"github.com/smallbiznis/birracraft/internal/observability"
	"github.com/smallbiznis/birracraft/internal/providers"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
	"github.com/smallbiznis/birracraft/internal/report"
	"github.com/smallbiznis/birracraft/internal/server"
	"github.com/smallbiznis/birracraft/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,
		providers.Module,

		server.Module,
		// Report jobs are only enqueued here; apps/worker consumes them.
		report.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}
