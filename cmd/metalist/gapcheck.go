package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metalist/internal/config"
	"metalist/internal/gapcheck"
)

func newGapcheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gapcheck",
		Short: "Warn about entities lacking metadata in the internal API",
		RunE:  runGapcheck,
	}

	cmd.Flags().String("api-base-url", "", "metadata API base URL")
	cmd.Flags().String("api-token", "", "metadata API bearer token")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runGapcheck(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadGapcheck(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := gapcheck.NewChecker(gapcheck.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
	}, logger)

	var warns gapcheck.Warnings
	checker.Run(ctx, &warns)

	items := warns.Items()
	for _, item := range items {
		fmt.Printf("warning: %s\n", item)
	}
	logger.Info("gapcheck done", zap.Int("warnings", len(items)))

	// Warnings never fail the run.
	return nil
}
