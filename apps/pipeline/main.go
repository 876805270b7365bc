package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/clock"
	"github.com/facturehq/facture/internal/config"
	"github.com/facturehq/facture/internal/invoice"
	"github.com/facturehq/facture/internal/logger"
	"github.com/facturehq/facture/internal/pipeline"
	"github.com/facturehq/facture/internal/providers/email"
	"github.com/facturehq/facture/internal/providers/storage"
	"github.com/facturehq/facture/pkg/db"
	"go.uber.org/fx"
)

// Standalone delivery pipeline process for deployments that scale the
// listener independently of the API server.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		storage.Module,
		email.Module,
		invoice.Module,
		pipeline.Module,
		pipeline.Workers,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
