package pdf

import (
	"context"

	"go.uber.org/fx"
)

type Provider interface {
	RenderSalesReport(ctx context.Context, report SalesReport) ([]byte, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
