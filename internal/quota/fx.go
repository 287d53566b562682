package quota

import (
	"github.com/smallbiznis/birracraft/internal/quota/repository"
	"github.com/smallbiznis/birracraft/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
