package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lowerCmd = &cobra.Command{
	Use:   "lower <fixture.yaml>",
	Short: "Lower the clauses of a match fixture into a control-flow graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		res, err := p.Lower(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, res.Graph.PrettyPrint())
		dumpTo(out, res.Graph)
		return nil
	},
}
