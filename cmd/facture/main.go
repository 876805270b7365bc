package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/catalog"
	"github.com/facturehq/facture/internal/clock"
	"github.com/facturehq/facture/internal/config"
	"github.com/facturehq/facture/internal/customer"
	"github.com/facturehq/facture/internal/invoice"
	"github.com/facturehq/facture/internal/logger"
	"github.com/facturehq/facture/internal/migration"
	"github.com/facturehq/facture/internal/pipeline"
	"github.com/facturehq/facture/internal/plan"
	"github.com/facturehq/facture/internal/providers/email"
	"github.com/facturehq/facture/internal/providers/storage"
	"github.com/facturehq/facture/internal/server"
	"github.com/facturehq/facture/internal/subscription"
	"github.com/facturehq/facture/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "facture",
		Short:   "Facture invoice issuance and delivery",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newPipelineCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the billing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newPipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run the invoice delivery pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			runPipeline()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then the API server and delivery pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runMonolith()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		baseModules(),
		server.Module,
	)
	app.Run()
}

func runPipeline() {
	app := fx.New(
		baseModules(),
		pipeline.Workers,
	)
	app.Run()
}

func runMonolith() {
	app := fx.New(
		baseModules(),
		server.Module,
		pipeline.Workers,
	)
	app.Run()
}

func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		storage.Module,
		email.Module,
		customer.Module,
		catalog.Module,
		plan.Module,
		invoice.Module,
		subscription.Module,
		pipeline.Module,
	)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
