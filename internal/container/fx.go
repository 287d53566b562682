package container

import (
	"github.com/smallbiznis/birracraft/internal/container/service"
	"go.uber.org/fx"
)

var Module = fx.Module("container.service",
	fx.Provide(service.New),
)
