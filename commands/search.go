package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		datasetID int
		formulaQ  string
		property  string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search PIF records",
		Long: `Search lists records matching the given filters. With --out the
matching records are written to a PIF JSON file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetID == 0 && formulaQ == "" && property == "" {
				return errors.Newf("at least one of --dataset, --formula, --property is required")
			}

			systems, err := a.client.SearchSystems(cmd.Context(), client.Query{
				DatasetID:    datasetID,
				Formula:      formulaQ,
				PropertyName: property,
			})
			if err != nil {
				return err
			}

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrapf(err, "creating %s", out)
				}
				defer f.Close()
				if err := pif.WriteSystems(f, systems); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(systems), out)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FORMULA\tPROPERTIES")
			for _, sys := range systems {
				fmt.Fprintf(w, "%s\t%d\n", sys.ChemicalFormula, len(sys.Properties))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records\n", len(systems))
			return nil
		},
	}

	cmd.Flags().IntVarP(&datasetID, "dataset", "d", 0, "restrict to one dataset")
	cmd.Flags().StringVar(&formulaQ, "formula", "", "exact chemical formula")
	cmd.Flags().StringVar(&property, "property", "", "require a property with this name")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write matches to a PIF JSON file")
	return cmd
}
