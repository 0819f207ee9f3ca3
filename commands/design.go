package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
)

func newDesignCmd(a *app) *cobra.Command {
	var (
		viewID string
		target string
		goal   string
		count  int
		effort int
		input  string
	)

	cmd := &cobra.Command{
		Use:   "design",
		Short: "Run experimental design on a trained view",
		Long: `Design submits an experimental design run, polls it to completion,
and prints the predicted-best materials and the suggested next
experiments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnline("design"); err != nil {
				return err
			}

			ctx := cmd.Context()
			run, err := a.client.SubmitDesignRun(ctx, viewID, client.DesignRequest{
				NumCandidates: count,
				Effort:        effort,
				Target:        client.Target{Name: target, Objective: goal},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "design run %s submitted, waiting...\n", run.UID)

			results, err := a.client.WaitForDesignRun(ctx, viewID, run.UID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nBest materials:")
			printCandidates(out, input, results.BestMaterials)
			fmt.Fprintln(out, "\nSuggested next experiments:")
			printCandidates(out, input, results.NextExperiments)
			return nil
		},
	}

	cmd.Flags().StringVarP(&viewID, "view", "v", "", "data view to design against")
	cmd.Flags().StringVarP(&target, "target", "t", "", "output descriptor to optimize")
	cmd.Flags().StringVar(&goal, "goal", client.GoalMax, "optimization goal: Max or Min")
	cmd.Flags().IntVarP(&count, "count", "n", client.DefaultDesignCandidate, "candidates per list")
	cmd.Flags().IntVar(&effort, "effort", client.DefaultDesignEffort, "search effort level")
	cmd.Flags().StringVar(&input, "input", "Formula", "formula input descriptor name")
	_ = cmd.MarkFlagRequired("view")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func printCandidates(out io.Writer, input string, candidates []client.DesignCandidate) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORMULA\tPREDICTED\tUNCERTAINTY\tSCORE")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\n", c.Formula(input), c.PredictedValue, c.Uncertainty, c.Score)
	}
	_ = w.Flush()
}
