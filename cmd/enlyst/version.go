package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of enlyst",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "enlyst version %s\n", strings.TrimSpace(enlyst.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
