package payment

import (
	"github.com/smallbiznis/birracraft/internal/payment/repository"
	"github.com/smallbiznis/birracraft/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
