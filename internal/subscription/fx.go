package subscription

import (
	"github.com/facturehq/facture/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(
		service.New,
	),
)
