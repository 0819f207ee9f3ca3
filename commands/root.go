// Package commands implements the citrine command line interface.
// Each subcommand lives in its own file; the root command wires the
// configuration, logging, and the platform client they share.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/client/fake"
	"github.com/citrinelab/citrine/config"
	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

const appName = "citrine"

// app carries the state the subcommands share: the loaded config and
// the client built from it.
type app struct {
	cfgPath  string
	site     string
	logLevel string
	offline  bool

	cfg      *config.Config
	client   *client.Client
	platform *fake.Platform
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Materials informatics client for the Citrination platform",
		Long: `citrine uploads PIF datasets, builds data views, runs predictions
and experimental design, and drives sequential-learning campaigns.

With --offline everything runs against an in-process platform that
trains a linear model over element fractions, so the full workflow can
be exercised without an account.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&a.site, "site", "", "platform URL (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.offline, "offline", false, "run against an in-process fake platform")

	cmd.AddCommand(
		newUploadCmd(a),
		newSearchCmd(a),
		newViewCmd(a),
		newPredictCmd(a),
		newDesignCmd(a),
		newLearnCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration, installs the logger, and builds the
// platform client.
func (a *app) setup() error {
	var err error
	if a.cfgPath != "" {
		a.cfg, err = config.Load(a.cfgPath)
	} else {
		a.cfg = config.DefaultConfig()
		err = a.cfg.Validate()
	}
	if err != nil {
		return err
	}
	if a.site != "" {
		a.cfg.Site = a.site
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}

	log.SetProvider(log.NewProvider(os.Stderr, log.ParseLevel(a.cfg.Logging.Level)))

	site, apiKey := a.cfg.Site, ""
	if a.offline {
		a.platform = fake.New(fake.WithAPIKey("offline"))
		site, apiKey = a.platform.URL(), "offline"
	} else {
		apiKey, err = a.cfg.APIKey()
		if err != nil {
			return err
		}
	}

	a.client, err = client.New(site, apiKey,
		client.WithLogger(log.GetLoggerWithName(appName)),
		client.WithPollInterval(a.cfg.Poll.Interval.Std()),
		client.WithPollDeadline(a.cfg.Poll.Deadline.Std()),
		client.WithRetryBudget(a.cfg.HTTP.RetryBudget.Std()),
	)
	return err
}

func (a *app) teardown() {
	if a.platform != nil {
		a.platform.Close()
		a.platform = nil
	}
}

// requireOnline fails commands that make no sense against the fake.
func (a *app) requireOnline(what string) error {
	if a.offline {
		return errors.Newf("%s needs an existing view; run the full workflow with 'citrine learn --offline'", what)
	}
	return nil
}
