package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/enlyst/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <resource> <operation>",
	Short: "Run one Enlyst operation",
	Long: `Runs a resource/operation pair and prints the output items as JSON.

Parameters are passed with -p key=value (repeatable) or --params '{...}'.
With --input, every JSON object read from the file ("-" for stdin) becomes an
item and its fields override the static parameters.

Examples:
  enlyst run project getAll
  enlyst run lead getProjectData -p projectId=proj_1 -p status=completed,failed
  enlyst run lead uploadCsv -p projectId=proj_1 -p csvFile=binary:data --binary data=leads.csv
  enlyst run lead uploadCsv -p projectId=proj_1 -p csvFile=leads.csv`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		continueOnFail, _ := cmd.Flags().GetBool("continue-on-fail")
		fileRoot, _ := cmd.Flags().GetString("file-root")
		app, err := newApp(cmd, cli.AppOptions{ContinueOnFail: continueOnFail, FileRoot: fileRoot})
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{}
		if len(args) > 0 {
			opts.Resource = args[0]
		}
		if len(args) > 1 {
			opts.Operation = args[1]
		}
		opts.Params, _ = cmd.Flags().GetStringArray("param")
		opts.ParamsJSON, _ = cmd.Flags().GetString("params")
		opts.Binary, _ = cmd.Flags().GetStringArray("binary")

		inputPath, _ := cmd.Flags().GetString("input")
		switch inputPath {
		case "":
		case "-":
			opts.Input = cmd.InOrStdin()
		default:
			f, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer f.Close()
			opts.Input = io.Reader(f)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.HandleExecutionError(cli.Run(ctx, app, opts, cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("param", "p", nil, "Parameter as key=value (repeatable)")
	runCmd.Flags().String("params", "", "Parameters as a JSON object")
	runCmd.Flags().StringP("input", "i", "", "Input items as JSON (file path or - for stdin)")
	runCmd.Flags().StringArray("binary", nil, "Attach a file to each item as key=path")
	runCmd.Flags().String("file-root", ".", "Directory csvFile paths are read from (empty disables paths)")
	runCmd.Flags().Bool("continue-on-fail", false, "Emit {error} items instead of aborting on the first failure")
}
