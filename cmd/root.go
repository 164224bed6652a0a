package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/mealmatch/app"
	"github.com/kilianp07/mealmatch/config"
	"github.com/kilianp07/mealmatch/infra/logger"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "mealmatch",
	Short:        "Surplus food allocation service",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level, overrides log_level from the configuration")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// applyLogLevel sets the global level, the flag winning over the config.
func applyLogLevel(cfgLevel string) error {
	level := cfgLevel
	if logLevel != "" {
		level = logLevel
	}
	if level == "" {
		return nil
	}
	return logger.SetLevel(level)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
