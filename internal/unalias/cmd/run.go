package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a single non-interactive scan",
	Long: `Run a single scan in non-interactive mode and exit.
Output is always plain text, suitable for scripts.`,
	Example: `
# Print a plain report
unalias run /path/to/binary

# Print only "address name" lines for renamed stubs
unalias run -q /path/to/binary
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := scanOptions{Config: cfg}
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.NamesOut, _ = cmd.Flags().GetString("names-out")

		return runFile(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
	},
}

// writeNameLines prints one "address name" line per renamed stub.
func writeNameLines(w io.Writer, rep *Report) error {
	for _, e := range rep.Stubs {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.Address, e.NewName); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	runCmd.Flags().BoolP("quiet", "q", false, "Print only renamed stubs")
}
