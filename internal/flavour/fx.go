package flavour

import (
	"github.com/smallbiznis/birracraft/internal/flavour/service"
	"go.uber.org/fx"
)

var Module = fx.Module("flavour.service",
	fx.Provide(service.New),
)
