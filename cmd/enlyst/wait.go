package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/cli"
)

var waitCmd = &cobra.Command{
	Use:   "wait <projectId>",
	Short: "Wait until a project's enrichment jobs are finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		interval, _ := cmd.Flags().GetDuration("interval")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.HandleExecutionError(cli.Run(ctx, app, cli.RunOptions{
			Resource:  "lead",
			Operation: "waitForEnrichment",
			Params: []string{
				"projectId=" + args[0],
				fmt.Sprintf("pollInterval=%d", int(interval.Seconds())),
				fmt.Sprintf("pollTimeout=%d", int(timeout.Seconds())),
			},
		}, cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().Duration("interval", 10*time.Second, "Time between status checks")
	waitCmd.Flags().Duration("timeout", time.Hour, "Give up after this long")
}
