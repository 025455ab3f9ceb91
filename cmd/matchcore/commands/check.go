package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/matchcore/internal/driver"
)

var checkJobs int

var checkCmd = &cobra.Command{
	Use:   "check <fixture.yaml>...",
	Short: "Type check the clauses of match fixtures",
	Long: `Print, for each case clause, the subject type inside its body, the
types of its captures and what is left of the subject for later clauses.
Several fixtures are checked concurrently and reported in argument order.
Exits 1 if a structural diagnostic was reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		results, err := p.CheckAll(args, checkJobs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		diagnostics := 0
		for i, res := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", args[i])
			}
			if err := driver.WriteReport(out, res); err != nil {
				return err
			}
			dumpTo(out, res.Report)
			diagnostics += len(res.Diagnostics)
		}
		if diagnostics > 0 {
			return fmt.Errorf("%w: %d", errDiagnostics, diagnostics)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 4, "Fixtures checked in parallel")
}
