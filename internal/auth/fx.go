package auth

import (
	"github.com/smallbiznis/birracraft/internal/auth/repository"
	"github.com/smallbiznis/birracraft/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
