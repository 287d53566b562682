package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/bizmetrics"
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

// birracraft runs the HTTP API and the report worker in one process.
func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,
		providers.Module,

		// Functional Domains
		server.Module,
		report.Module,
		report.WorkerModule,
		report.InProcessModule,
		bizmetrics.Module,
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
