package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/cli"
	"github.com/aretw0/enlyst/internal/config"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect stored webhook deliveries",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List received webhook events, newest first",
	Long:  `Reads the shared event store. Needs the file or redis backend, since the memory store lives inside "enlyst serve".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := newApp(cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()
		if app.Config.Store.Backend == config.StoreMemory {
			return errors.New("events list needs the file or redis store (set store.backend or " + config.EnvRedisAddr + ")")
		}

		events, err := app.Store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsListCmd.Flags().IntP("limit", "n", 20, "Maximum number of events")
}
