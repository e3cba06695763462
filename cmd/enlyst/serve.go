package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst"
	"github.com/aretw0/enlyst/internal/cli"
	"github.com/aretw0/enlyst/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the Enlyst webhook trigger",
	Long: `Starts an HTTP server receiving Enlyst webhook deliveries on /webhook/enlyst.
Accepted deliveries are stored (memory or Redis) and streamed on /events/stream.
Set ENLYST_WEBHOOK_TOKEN to require "Authorization: Bearer <token>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		quiet, _ := cmd.Flags().GetBool("quiet")

		app, err := newApp(cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		var out io.Writer
		if !quiet {
			out = cmd.OutOrStdout()
			if tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(out)
			}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, app, fmt.Sprintf(":%d", port), enlyst.Version, out)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner or status lines")
}
