package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metalist/internal/config"
	"metalist/internal/schema"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every data file against its JSON schema",
		RunE:  runValidate,
	}

	cmd.Flags().String("schema-dir", "./schemas", "schema directory")
	cmd.Flags().String("data-dir", "./src", "data directory")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadValidate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	validator, err := schema.NewValidator(cfg.SchemaDir)
	if err != nil {
		return err
	}

	failures, err := validator.ValidateDir(cfg.DataDir)
	if err != nil {
		return err
	}

	if len(failures) == 0 {
		logger.Info("all data files valid", zap.String("data_dir", cfg.DataDir))
		return nil
	}

	for _, failure := range failures {
		fmt.Printf("%s:\n", failure.File)
		for _, msg := range failure.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
	return fmt.Errorf("%d file(s) failed validation", len(failures))
}
