package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/admin/tg-bots/organic-shop/internal/app"
	"github.com/spf13/cobra"
)

const (
	appName   = "catalog"
	envPrefix = "CATALOG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Organic shop catalog API",
		SilenceUsage: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := setup()
			if err != nil {
				return err
			}
			return a.RunCatalog(cmd.Context(), cfg)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := setup()
			if err != nil {
				return err
			}
			return a.MigrateCatalog(cmd.Context(), cfg)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create demo categories and products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := setup()
			if err != nil {
				return err
			}
			result, err := a.SeedCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, products created: %d\n",
				result.CategoriesCreated, result.ProductsCreated)
			return nil
		},
	}

	root.AddCommand(serve, migrate, seed)
	// без подкоманды - serve
	root.RunE = serve.RunE
	return root
}

func setup() (*app.App, *app.CatalogConfig, error) {
	cfg, err := app.NewCatalogConfig(envPrefix)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(appName, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}
