package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
)

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage data views",
	}
	cmd.AddCommand(newViewCreateCmd(a), newViewStatusCmd(a), newViewRetrainCmd(a))
	return cmd
}

func newViewCreateCmd(a *app) *cobra.Command {
	var (
		name        string
		description string
		datasets    []int
		input       string
		outputs     []string
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a data view and start training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := client.ViewConfig{
				Name:        name,
				Description: description,
				DatasetIDs:  datasets,
				Descriptors: []client.Descriptor{client.FormulaDescriptor(input)},
			}
			for _, out := range outputs {
				cfg.Descriptors = append(cfg.Descriptors, client.RealDescriptor(out, client.CategoryOutput))
			}

			view, err := a.client.CreateDataView(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created view %s (%s), training started\n", view.ID, view.Name)

			if wait {
				if err := a.client.WaitUntilReady(cmd.Context(), view.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "view is ready")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "view name")
	cmd.Flags().StringVar(&description, "description", "", "view description")
	cmd.Flags().IntSliceVarP(&datasets, "dataset", "d", nil, "dataset IDs the view trains on")
	cmd.Flags().StringVar(&input, "input", "Formula", "formula input descriptor name")
	cmd.Flags().StringSliceVar(&outputs, "output", nil, "output property descriptor (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().BoolVar(&wait, "wait", false, "block until training finishes")
	return cmd
}

func newViewStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <view-id>",
		Short: "Show a view's training status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnline("view status"); err != nil {
				return err
			}
			status, err := a.client.TrainStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "predict:             %s\n", formatService(status.Predict))
			fmt.Fprintf(out, "experimental design: %s\n", formatService(status.ExperimentalDesign))
			fmt.Fprintf(out, "model reports:       %s\n", formatService(status.ModelReports))
			return nil
		},
	}
}

func formatService(s client.ServiceStatus) string {
	if s.Reason != "" {
		return fmt.Sprintf("%s (%s)", s.Status, s.Reason)
	}
	return s.Status
}

func newViewRetrainCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "retrain <view-id>",
		Short: "Retrain a view against the current dataset contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnline("view retrain"); err != nil {
				return err
			}
			if err := a.client.Retrain(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "retraining started")

			if wait {
				if err := a.client.WaitUntilReady(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "view is ready")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "block until training finishes")
	return cmd
}
