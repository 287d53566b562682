package providers

import (
	"github.com/smallbiznis/birracraft/internal/providers/email"
	"github.com/smallbiznis/birracraft/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
