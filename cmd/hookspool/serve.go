package main

import (
	"io"
	"net/http"
	"os"

	"github.com/lei/hookspool/internal/pipeline"
	"github.com/lei/hookspool/internal/response"
	"github.com/lei/hookspool/pkg/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Handle one connection on stdin/stdout",
	Long:  "Reads a single request from stdin and writes the response to stdout, then exits. Intended for socket activation (systemd Accept=yes or inetd), which hands the gateway one connection per invocation.",
	RunE:  runServe,
}

// stdio joins stdin and stdout into the connection's read/write pair
type stdio struct {
	io.Reader
	io.Writer
}

func runServe(cmd *cobra.Command, args []string) error {
	conn := stdio{Reader: os.Stdin, Writer: os.Stdout}

	cfg, err := loadConfig()
	if err != nil {
		// The connection still gets a response: a bare status with
		// no diagnostic detail, logged in full on our side.
		log := logger.New("info", "json")
		log.Errorw("configuration unavailable", "error", err, "path", configPath())
		response.Write(conn, http.StatusInternalServerError, "")
		return err
	}

	log := logger.New(cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	defer log.Sync()

	pipeline.New(cfg, log).Handle(conn)
	return nil
}
