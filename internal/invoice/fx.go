package invoice

import (
	"github.com/facturehq/facture/internal/clock"
	"github.com/facturehq/facture/internal/invoice/render"
	"github.com/facturehq/facture/internal/invoice/repository"
	"github.com/facturehq/facture/internal/invoice/service"
	"github.com/facturehq/facture/internal/providers/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(service.NewNumberer),
	fx.Provide(func(store storage.Provider, clk clock.Clock) render.Renderer {
		return render.NewPDF(store, clk)
	}),
)
