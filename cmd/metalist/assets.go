package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metalist/internal/assets"
	"metalist/internal/config"
)

func newAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Maintain the image asset tree",
	}

	checksumCmd := &cobra.Command{
		Use:   "checksum",
		Short: "Rename address-named images to their checksummed form",
		RunE:  runChecksum,
	}
	checksumCmd.Flags().String("assets-dir", "./src/assets", "asset directory")
	checksumCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.AddCommand(checksumCmd)

	resizeCmd := &cobra.Command{
		Use:   "resize",
		Short: "Normalize every image to an opaque 1024x1024 PNG canvas",
		RunE:  runResize,
	}
	resizeCmd.Flags().String("assets-dir", "./src/assets", "asset directory")
	resizeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.AddCommand(resizeCmd)

	return cmd
}

func runChecksum(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAssets(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	report, err := assets.Checksum(cfg.AssetsDir, logger)
	if err != nil {
		return err
	}

	logger.Info("checksum pass done", zap.Int("fixed", report.Fixed), zap.Int("failed", report.Failed))
	return nil
}

func runResize(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAssets(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	report, err := assets.Resize(cfg.AssetsDir, logger)
	if err != nil {
		return err
	}

	logger.Info("resize pass done",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return nil
}
