package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lei/hookspool/internal/httpd"
	"github.com/lei/hookspool/pkg/logger"
	"github.com/spf13/cobra"
)

var flagAddr string

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run a standalone HTTP listener",
	Long:  "Binds an address and serves the ingestion endpoints until interrupted. For deployments without socket activation.",
	RunE:  runListen,
}

func init() {
	listenCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (defaults to the configured one)")
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	defer log.Sync()

	addr := flagAddr
	if addr == "" {
		addr = cfg.Settings.Listen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return httpd.NewServer(addr, cfg, log).Start(ctx)
}
