package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/cli"
	"github.com/aretw0/enlyst/internal/presentation/tui"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect the configured API credentials",
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the access token is accepted (GET /projects)",
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetBool("prompt")

		app, err := newApp(cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		if prompt {
			token, err := tui.ReadSecret(os.Stdin, cmd.ErrOrStderr(), "Access token: ")
			if err != nil {
				return err
			}
			app.Config.Credentials.AccessToken = token
		}

		c, err := app.Client()
		if err != nil {
			return err
		}
		if err := c.TestCredentials(cmd.Context()); err != nil {
			return fmt.Errorf("credentials rejected by %s: %w", c.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credentials OK (%s)\n", c.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsTestCmd)
	credentialsTestCmd.Flags().Bool("prompt", false, "Read the access token from the terminal")
}
