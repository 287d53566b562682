package main

import (
	"github.com/smallbiznis/birracraft/internal/bizmetrics"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/observability"
	"github.com/smallbiznis/birracraft/internal/providers"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
	"github.com/smallbiznis/birracraft/internal/report"
	"github.com/smallbiznis/birracraft/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		ratelimit.Module,
		providers.Module,

		// No server module!
		report.Module,
		report.WorkerModule,
		bizmetrics.Module,
	)
	app.Run()
}
