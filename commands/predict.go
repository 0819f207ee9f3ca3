package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/pkg/errors"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		viewID   string
		formulas []string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict properties for candidate formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnline("predict"); err != nil {
				return err
			}
			if len(formulas) == 0 {
				return errors.Newf("at least one --formula is required")
			}

			candidates := make([]client.Candidate, len(formulas))
			for i, f := range formulas {
				candidates[i] = client.Candidate{input: f}
			}
			preds, err := a.client.Predict(cmd.Context(), viewID, candidates)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FORMULA\tPROPERTY\tVALUE\tUNCERTAINTY")
			for i, pred := range preds {
				names := make([]string, 0, len(pred.Values))
				for name := range pred.Values {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					v := pred.Values[name]
					fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4g\n", formulas[i], name, v.Value, v.Loss)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&viewID, "view", "v", "", "data view to predict with")
	cmd.Flags().StringSliceVarP(&formulas, "formula", "f", nil, "candidate formula (repeatable)")
	cmd.Flags().StringVar(&input, "input", "Formula", "formula input descriptor name")
	_ = cmd.MarkFlagRequired("view")
	return cmd
}
