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
	"metalist/internal/listfile"
	"metalist/internal/model"
	"metalist/internal/reconcile"
	"metalist/internal/remote"
	"metalist/internal/report"
)

func newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "reconcile find|remove|add",
		Short:     "Reconcile the local vault list against the remote listing API",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"find", "remove", "add"},
		RunE:      runReconcile,
	}

	cmd.Flags().String("data-dir", "./src", "data directory")
	cmd.Flags().String("chain", "mainnet", "chain (mainnet, bepolia)")
	cmd.Flags().String("endpoint", "", "vault listing GraphQL endpoint")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 0, "initial retry backoff")
	cmd.Flags().Duration("page-delay", 0, "delay between pages")
	cmd.Flags().String("report", "./data/reconcile.jsonl", "JSONL run report path")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the audit table")
	cmd.Flags().Bool("dry-run", false, "report without mutating the local file")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	mode := args[0]

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReconcile(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listPath := config.DataFile(cfg.DataDir, "vaults", cfg.Chain)
	var list model.VaultList
	if err := listfile.Load(listPath, &list); err != nil {
		return err
	}

	client := remote.NewClient(remote.Config{
		Endpoint:     cfg.Endpoint,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PageDelay:    cfg.PageDelay,
	}, logger)

	sinks, closeSinks, err := buildSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("reconcile start",
		zap.String("mode", mode),
		zap.String("chain", cfg.Chain),
		zap.String("list", listPath),
		zap.Int("local_vaults", len(list.Vaults)),
		zap.Bool("dry_run", cfg.DryRun),
	)

	var entries []report.Entry
	switch mode {
	case "find":
		remoteSet, err := client.ListAddresses(ctx)
		if err != nil {
			return err
		}
		missing := reconcile.Find(&list, remoteSet)
		for _, v := range missing {
			fmt.Printf("%s (%s) is not whitelisted remotely\n", v.VaultAddress, v.Name)
			entries = append(entries, report.NewEntry(mode, cfg.Chain, v.VaultAddress, "absent remotely"))
		}
		logger.Info("find done", zap.Int("missing", len(missing)))

	case "remove":
		remoteSet, err := client.ListAddresses(ctx)
		if err != nil {
			return err
		}
		removed, err := reconcile.Remove(&list, remoteSet)
		if err != nil {
			return err
		}
		for _, v := range removed {
			entries = append(entries, report.NewEntry(mode, cfg.Chain, v.VaultAddress, "removed, absent remotely"))
		}
		if !cfg.DryRun && len(removed) > 0 {
			if err := listfile.Save(listPath, &list); err != nil {
				return err
			}
		}
		logger.Info("remove done", zap.Int("removed", len(removed)), zap.Int("kept", len(list.Vaults)))

	case "add":
		rows, err := client.ListVaults(ctx)
		if err != nil {
			return err
		}
		added := reconcile.Add(&list, rows)
		for _, v := range added {
			entries = append(entries, report.NewEntry(mode, cfg.Chain, v.VaultAddress, "placeholder appended: "+v.Protocol))
		}
		if !cfg.DryRun && len(added) > 0 {
			if err := listfile.Save(listPath, &list); err != nil {
				return err
			}
		}
		logger.Info("add done", zap.Int("added", len(added)))

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	for _, sink := range sinks {
		if err := sink.Write(ctx, entries); err != nil {
			logger.Warn("report write failed", zap.Error(err))
		}
	}
	return nil
}

func buildSinks(ctx context.Context, cfg config.ReconcileConfig) ([]report.Sink, func(), error) {
	sinks := []report.Sink{report.NewJSONLSink(cfg.ReportPath)}
	closeFn := func() {}

	if cfg.PGDSN != "" {
		pgSink, err := report.NewPostgresSink(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, pgSink)
		closeFn = pgSink.Close
	}

	return sinks, closeFn, nil
}
