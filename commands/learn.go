package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/ingest"
	"github.com/citrinelab/citrine/learn"
	"github.com/citrinelab/citrine/plots"
	"github.com/citrinelab/citrine/pkg/errors"
)

func newLearnCmd(a *app) *cobra.Command {
	var (
		viewID      string
		datasetID   int
		seeds       string
		target      string
		goal        string
		iterations  int
		batchSize   int
		acquisition string
		selection   string
		pool        []string
		earlyStop   float64
		seed        int64
		weights     []string
		offset      float64
		plotPath    string
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Run a sequential-learning campaign",
		Long: `Learn repeatedly selects candidates from a trained view, measures
them with a toy objective (a weighted sum of atomic fractions),
appends the measurements, and retrains.

Online, --view and --dataset name an existing campaign. With
--offline, --seeds bootstraps a dataset and view on the in-process
platform first, so the whole loop runs without an account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			objective, err := buildObjective(weights, offset)
			if err != nil {
				return err
			}

			// flags override the config file, which overrides defaults
			lc := a.cfg.Learn
			if !cmd.Flags().Changed("target") && lc.Target != "" {
				target = lc.Target
			}
			if !cmd.Flags().Changed("goal") {
				goal = lc.Goal
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = lc.Iterations
			}
			if !cmd.Flags().Changed("batch") {
				batchSize = lc.BatchSize
			}
			if !cmd.Flags().Changed("acquisition") {
				acquisition = lc.Acquisition
			}
			if !cmd.Flags().Changed("selection") {
				selection = lc.Selection
			}
			if len(pool) == 0 {
				pool = lc.Pool
			}
			var stopAt *float64
			if cmd.Flags().Changed("early-stop") {
				stopAt = &earlyStop
			} else {
				stopAt = lc.EarlyStop
			}
			if target == "" {
				return errors.Newf("--target is required (or set learn.target in the config)")
			}

			ctx := cmd.Context()
			if a.offline {
				viewID, datasetID, err = a.bootstrapOffline(cmd, seeds, target)
				if err != nil {
					return err
				}
			} else if viewID == "" || datasetID == 0 {
				return errors.Newf("--view and --dataset are required (or use --offline with --seeds)")
			}

			acq, ok := learn.ParseAcquisition(acquisition, seed)
			if !ok {
				return errors.Newf("unknown acquisition %q (want MLI, MEI, or Random)", acquisition)
			}

			loop, err := learn.New(a.client, viewID, objective, learn.Config{
				DatasetID:   datasetID,
				Target:      target,
				Goal:        goal,
				Iterations:  iterations,
				BatchSize:   batchSize,
				Selection:   learn.Selection(selection),
				Acquisition: acq,
				Pool:        pool,
				EarlyStop:   stopAt,
			})
			if err != nil {
				return err
			}

			history, runErr := loop.Run(ctx)
			if history != nil && len(history.Iterations) > 0 {
				printHistory(cmd, history)
				if plotPath != "" {
					if err := plots.SaveBestSoFar(history, plotPath); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", plotPath)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&viewID, "view", "v", "", "data view to learn against")
	cmd.Flags().IntVarP(&datasetID, "dataset", "d", 0, "dataset measurements append to")
	cmd.Flags().StringVar(&seeds, "seeds", "", "CSV of seed measurements (offline bootstrap)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "output descriptor to optimize")
	cmd.Flags().StringVar(&goal, "goal", client.GoalMax, "optimization goal: Max or Min")
	cmd.Flags().IntVar(&iterations, "iterations", 10, "iteration budget")
	cmd.Flags().IntVar(&batchSize, "batch", 1, "candidates measured per iteration")
	cmd.Flags().StringVar(&acquisition, "acquisition", "MLI", "acquisition: MLI, MEI, or Random")
	cmd.Flags().StringVar(&selection, "selection", "design", "candidate selection: design or predict")
	cmd.Flags().StringSliceVar(&pool, "pool", nil, "candidate formulas for predict selection")
	cmd.Flags().Float64Var(&earlyStop, "early-stop", 0, "stop once the best value reaches this")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the Random acquisition")
	cmd.Flags().StringSliceVar(&weights, "weight", nil, "objective weight, e.g. Cu=2 (repeatable)")
	cmd.Flags().Float64Var(&offset, "offset", 0, "objective offset")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a best-so-far plot here (.png/.svg)")
	return cmd
}

// buildObjective makes the toy linear objective from element=weight
// flags.
func buildObjective(weights []string, offset float64) (learn.Objective, error) {
	if len(weights) == 0 {
		return nil, errors.Newf("at least one --weight is required, e.g. --weight Cu=2")
	}
	parsed := make(map[string]float64, len(weights))
	for _, w := range weights {
		element, value, found := strings.Cut(w, "=")
		if !found {
			return nil, errors.Newf("bad --weight %q (want element=value)", w)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.Newf("bad --weight %q: %s is not a number", w, value)
		}
		parsed[strings.TrimSpace(element)] = v
	}
	return &learn.LinearObjective{Weights: parsed, Offset: offset}, nil
}

// bootstrapOffline seeds the fake platform with a dataset and a
// trained view so the loop has something to learn against.
func (a *app) bootstrapOffline(cmd *cobra.Command, seeds, target string) (string, int, error) {
	if seeds == "" {
		return "", 0, errors.Newf("--seeds is required with --offline")
	}
	f, err := os.Open(seeds)
	if err != nil {
		return "", 0, errors.Wrapf(err, "opening %s", seeds)
	}
	defer f.Close()
	systems, err := ingest.ReadCSVAuto(f)
	if err != nil {
		return "", 0, err
	}

	ctx := cmd.Context()
	ds, err := a.client.CreateDataset(ctx, "offline seeds", "bootstrapped from "+seeds)
	if err != nil {
		return "", 0, err
	}
	if _, err := a.client.UploadSystems(ctx, ds.ID, systems); err != nil {
		return "", 0, err
	}

	view, err := a.client.CreateDataView(ctx, client.ViewConfig{
		Name:       "offline view",
		DatasetIDs: []int{ds.ID},
		Descriptors: []client.Descriptor{
			client.FormulaDescriptor("Formula"),
			client.RealDescriptor(target, client.CategoryOutput),
		},
	})
	if err != nil {
		return "", 0, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "bootstrapped dataset %d and view %s from %d seeds\n",
		ds.ID, view.ID, len(systems))
	return view.ID, ds.ID, nil
}

func printHistory(cmd *cobra.Command, h *learn.History) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tFORMULA\tPREDICTED\tMEASURED\tBEST")
	for _, it := range h.Iterations {
		for _, m := range it.Selected {
			fmt.Fprintf(w, "%d\t%s\t%.4g\t%.4g\t%.4g\n", it.Number, m.Formula, m.Predicted, m.Measured, it.Best)
		}
	}
	_ = w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "best: %s = %.4g\n", h.BestFormula, h.Best)
}
