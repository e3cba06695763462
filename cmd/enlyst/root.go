package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/cli"
	"github.com/aretw0/enlyst/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "enlyst",
	Short: "Enlyst lead enrichment from the command line",
	Long: `enlyst runs Enlyst API operations as batch steps, hosts the Enlyst webhook
trigger and exposes every operation to AI agents over MCP.

Credentials are read from the config file (enlyst.yaml) or from
ENLYST_BASE_URL and ENLYST_ACCESS_TOKEN.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("base-url", "", "Override the API base URL")
}

// newApp loads the configuration and applies the persistent flags.
func newApp(cmd *cobra.Command, opts cli.AppOptions) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	baseURL, _ := cmd.Flags().GetString("base-url")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.Credentials.BaseURL = baseURL
	}
	opts.Debug = debug
	return cli.NewApp(cfg, opts)
}
