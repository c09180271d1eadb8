package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metalist/internal/chain"
	"metalist/internal/config"
	"metalist/internal/icon"
	"metalist/internal/imagehost"
	"metalist/internal/listfile"
	"metalist/internal/model"
)

func newIconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icon",
		Short: "Generate and publish composite vault badge icons",
		RunE:  runIcon,
	}

	cmd.Flags().String("data-dir", "./src", "data directory")
	cmd.Flags().String("assets-dir", "./src/assets", "asset directory")
	cmd.Flags().String("chain", "mainnet", "chain (mainnet, bepolia)")
	cmd.Flags().String("rpc", "", "RPC URL override")
	cmd.Flags().String("vault-address", "", "vault address (0x..)")
	cmd.Flags().String("brand-color", "", "brand color override (#RRGGBB or linear-gradient(...))")
	cmd.Flags().Bool("all", false, "generate badges for every vault")
	cmd.Flags().Bool("dry-run", false, "compose without uploading or updating metadata")
	cmd.Flags().Bool("force", false, "regenerate even when a hosted logo exists")
	cmd.Flags().Bool("save-local", false, "also write the badge to the output directory")
	cmd.Flags().String("out", "./data/icons", "local badge output directory")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runIcon(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIcon(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.All && cfg.VaultAddress == "" {
		return fmt.Errorf("vault-address is required unless --all is set")
	}
	if cfg.VaultAddress != "" && !common.IsHexAddress(cfg.VaultAddress) {
		return fmt.Errorf("invalid vault address %q", cfg.VaultAddress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vaultsPath := config.DataFile(cfg.DataDir, "vaults", cfg.Chain)
	var vaults model.VaultList
	if err := listfile.Load(vaultsPath, &vaults); err != nil {
		return err
	}

	tokensPath := config.DataFile(cfg.DataDir, "tokens", cfg.Chain)
	var tokens model.TokenList
	if err := listfile.Load(tokensPath, &tokens); err != nil {
		return err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var uploader icon.Uploader
	var hostedPrefix string
	if cfg.DryRun {
		logger.Info("dry run, image host not contacted")
	} else {
		cld, err := imagehost.NewCloudinary(imagehost.Config{
			CloudName: cfg.CloudName,
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			Folder:    cfg.Folder,
		})
		if err != nil {
			return err
		}
		uploader = cld
		hostedPrefix = fmt.Sprintf("https://res.cloudinary.com/%s/", cfg.CloudName)
	}

	gen := &icon.Generator{
		Vaults:       &vaults,
		VaultsPath:   vaultsPath,
		Tokens:       &tokens,
		AssetsDir:    cfg.AssetsDir,
		Resolver:     chainClient,
		Uploader:     uploader,
		HostedPrefix: hostedPrefix,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		DryRun:       cfg.DryRun,
		Force:        cfg.Force,
		SaveLocal:    cfg.SaveLocal,
		OutDir:       cfg.OutDir,
		Logger:       logger,
	}

	if cfg.All {
		succeeded, failed := gen.GenerateAll(ctx, cfg.BrandColor)
		logger.Info("batch done", zap.Int("succeeded", succeeded), zap.Int("failed", failed))
		if failed > 0 {
			return fmt.Errorf("%d vault(s) failed", failed)
		}
		return nil
	}

	return gen.Generate(ctx, common.HexToAddress(cfg.VaultAddress), cfg.BrandColor)
}
