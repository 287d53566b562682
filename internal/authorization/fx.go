package authorization

import (
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
	fx.Provide(func(s Service) authdomain.RoleAssigner { return s }),
)
