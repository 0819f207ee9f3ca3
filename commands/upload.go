package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/ingest"
	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		datasetID   int
		createName  string
		description string
		skipBad     bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file.csv|file.json>",
		Short: "Upload records to a dataset",
		Long: `Upload reads PIF JSON or CSV (formula column plus property columns,
units in parentheses) and uploads the records. Use --create to make a
new dataset, or --dataset to append to an existing one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetID == 0 && createName == "" {
				return errors.Newf("either --dataset or --create is required")
			}

			systems, err := readSystemsFile(args[0], skipBad)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if createName != "" {
				ds, err := a.client.CreateDataset(ctx, createName, description)
				if err != nil {
					return err
				}
				datasetID = ds.ID
				fmt.Fprintf(cmd.OutOrStdout(), "created dataset %d (%s)\n", ds.ID, ds.Name)
			}

			res, err := a.client.UploadSystems(ctx, datasetID, systems)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d records to dataset %d (version %d)\n",
				res.Accepted, res.DatasetID, res.Version)
			return nil
		},
	}

	cmd.Flags().IntVarP(&datasetID, "dataset", "d", 0, "dataset to append to")
	cmd.Flags().StringVar(&createName, "create", "", "create a new dataset with this name")
	cmd.Flags().StringVar(&description, "description", "", "description for --create")
	cmd.Flags().BoolVar(&skipBad, "skip-bad-rows", false, "drop CSV rows that fail to parse")
	return cmd
}

// readSystemsFile loads PIF records from JSON or CSV based on the file
// extension.
func readSystemsFile(path string, skipBad bool) ([]*pif.ChemicalSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return pif.ReadSystems(f)
	case ".csv":
		if skipBad {
			return ingest.ReadCSVAutoLenient(f)
		}
		return ingest.ReadCSVAuto(f)
	default:
		return nil, errors.Newf("unsupported file type %q (want .json or .csv)", filepath.Ext(path))
	}
}
