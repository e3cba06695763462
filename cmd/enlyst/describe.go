package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/presentation/graph"
	"github.com/aretw0/enlyst/internal/presentation/tui"
	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/node"
	"github.com/aretw0/enlyst/pkg/trigger"
)

var describeCmd = &cobra.Command{
	Use:   "describe [resource...]",
	Short: "Document the operations and their parameters",
	Long: `Prints every operation with the parameters it accepts.
With --json the raw descriptors of the node, the trigger and the credentials are printed instead.
With --mermaid a flowchart of the operations is printed; "describe --mermaid lead uploadCsv"
highlights that operation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		asMermaid, _ := cmd.Flags().GetBool("mermaid")
		out := cmd.OutOrStdout()

		if asMermaid {
			var overlay *graph.Overlay
			if len(args) > 0 {
				overlay = &graph.Overlay{Resource: args[0]}
				if len(args) > 1 {
					overlay.Operation = args[1]
				}
			}
			_, err := fmt.Fprint(out, graph.GenerateMermaid(node.Description(), overlay))
			return err
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"node":        node.Description(),
				"trigger":     trigger.Description(),
				"credentials": client.CredentialDescriptor(),
			})
		}

		md := tui.DescribeMarkdown(node.Description(), args...)
		if !tui.IsTerminal(os.Stdout) {
			_, err := fmt.Fprint(out, md)
			return err
		}
		rendered, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("json", false, "Print the descriptors as JSON")
	describeCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart of the operations")
}
