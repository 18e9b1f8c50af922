package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/version"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "/etc/hookspool/config.yaml"

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "hookspool",
	Short:         "Build-trigger ingestion gateway",
	Long:          "hookspool receives webhook-style build requests, resolves them against a project/target configuration and spools job files for an external build executor.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version string",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the configuration file")
	rootCmd.AddCommand(serveCmd, listenCmd, checkCmd, versionCmd)
}

// configPath resolves the configuration file location: flag, then
// HOOKSPOOL_CONFIG, then the packaged default.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("HOOKSPOOL_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath())
}

func main() {
	// Load .env file (ignore error if file doesn't exist - env vars
	// might be set externally)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
