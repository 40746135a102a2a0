package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/feedrank/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load features, schema and model, then serve the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load everything the server needs and verify the feature contract, then exit",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.Build(context.Background(), cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.Printf("ok: schema %s, %d posts, scorer %s\n", a.Schema.Version, a.Table.Len(), a.Scorer.Name())
	return nil
}
