package learn

import (
	"context"
	"math"
	"sort"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/formula"
	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

// Selection picks how each iteration's candidates are chosen.
type Selection string

const (
	// SelectionDesign submits a platform design run and takes its
	// suggested experiments.
	SelectionDesign Selection = "design"
	// SelectionPredict predicts the whole local pool and ranks it
	// with the configured acquisition.
	SelectionPredict Selection = "predict"
)

// Config parameterizes a sequential-learning loop.
type Config struct {
	DatasetID int

	// Target is the output descriptor being optimized.
	Target string
	// FormulaDescriptor is the view's formula input name.
	FormulaDescriptor string
	// Goal is client.GoalMax or client.GoalMin.
	Goal string

	Iterations int
	BatchSize  int

	Selection   Selection
	Acquisition Acquisition
	// Pool is the local candidate pool for SelectionPredict.
	Pool []string
	// DesignEffort is passed to design runs for SelectionDesign.
	DesignEffort int

	// EarlyStop ends the loop once the best measurement reaches this
	// value.
	EarlyStop *float64
}

func (c *Config) withDefaults() (Config, error) {
	cfg := *c
	if cfg.Target == "" {
		return cfg, errors.NewValidationError("target", "target descriptor required", "")
	}
	if cfg.FormulaDescriptor == "" {
		cfg.FormulaDescriptor = "Formula"
	}
	if cfg.Goal == "" {
		cfg.Goal = client.GoalMax
	}
	if cfg.Goal != client.GoalMax && cfg.Goal != client.GoalMin {
		return cfg, errors.NewValidationError("goal", "goal must be Max or Min", cfg.Goal)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.Selection == "" {
		cfg.Selection = SelectionDesign
	}
	if cfg.Selection == SelectionPredict && len(cfg.Pool) == 0 {
		return cfg, errors.NewValidationError("pool", "predict selection needs a candidate pool", "")
	}
	if cfg.Acquisition == nil {
		cfg.Acquisition = MLI{}
	}
	return cfg, nil
}

// Measurement is one candidate evaluated during the loop.
type Measurement struct {
	Formula     string
	Predicted   float64
	Uncertainty float64
	Measured    float64
}

// Iteration summarizes one round of the loop.
type Iteration struct {
	Number   int
	Selected []Measurement
	// Best is the best measured value after this iteration.
	Best        float64
	BestFormula string
}

// History is the full record of a loop run.
type History struct {
	Goal        string
	Iterations  []Iteration
	Best        float64
	BestFormula string
}

// BestSeries returns the best-so-far value after each iteration.
func (h *History) BestSeries() []float64 {
	series := make([]float64, len(h.Iterations))
	for i, it := range h.Iterations {
		series[i] = it.Best
	}
	return series
}

// Measurements returns every measurement in iteration order.
func (h *History) Measurements() []Measurement {
	var all []Measurement
	for _, it := range h.Iterations {
		all = append(all, it.Selected...)
	}
	return all
}

// Loop runs sequential learning over one data view.
type Loop struct {
	client    *client.Client
	viewID    string
	objective Objective
	cfg       Config
	logger    log.Logger

	// measured keys are normalized formulas; a candidate is never
	// selected twice
	measured map[string]bool
	best     float64
	bestForm string
}

// New builds a loop over viewID. The objective stands in for the real
// experiment that measures each selected candidate.
func New(c *client.Client, viewID string, objective Objective, cfg Config) (*Loop, error) {
	if c == nil {
		return nil, errors.NewValidationError("client", "client required", nil)
	}
	if viewID == "" {
		return nil, errors.NewValidationError("viewID", "view id required", "")
	}
	if objective == nil {
		return nil, errors.NewValidationError("objective", "objective required", nil)
	}
	full, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	return &Loop{
		client:    c,
		viewID:    viewID,
		objective: objective,
		cfg:       full,
		logger:    log.GetLoggerWithName("learn").With(log.ViewIDKey, viewID, log.AcquisitionKey, full.Acquisition.Name()),
		measured:  make(map[string]bool),
	}, nil
}

func (l *Loop) maximize() bool { return l.cfg.Goal == client.GoalMax }

func (l *Loop) better(v float64) bool {
	if l.maximize() {
		return v > l.best
	}
	return v < l.best
}

// seed loads the already-measured candidates from the dataset so the
// loop neither re-selects them nor forgets the incumbent best.
func (l *Loop) seed(ctx context.Context) error {
	systems, err := l.client.SearchSystems(ctx, client.Query{DatasetID: l.cfg.DatasetID})
	if err != nil {
		return errors.Wrap(err, "seeding measured set")
	}

	l.best = math.Inf(-1)
	if !l.maximize() {
		l.best = math.Inf(1)
	}
	for _, sys := range systems {
		comp, err := formula.Parse(sys.ChemicalFormula)
		if err != nil {
			continue
		}
		l.measured[comp.Normalized()] = true

		prop, ok := sys.Property(l.cfg.Target)
		if !ok {
			continue
		}
		v, err := prop.NumericValue()
		if err != nil {
			continue
		}
		if l.better(v) {
			l.best = v
			l.bestForm = sys.ChemicalFormula
		}
	}

	l.logger.Info("loop seeded",
		log.DatasetIDKey, l.cfg.DatasetID,
		log.SamplesKey, len(l.measured),
		log.BestKey, l.best,
	)
	return nil
}

// Run executes the loop until the iteration budget, the early-stop
// target, or pool exhaustion ends it. The returned history is valid
// even when an error cut the run short.
func (l *Loop) Run(ctx context.Context) (*History, error) {
	if err := l.seed(ctx); err != nil {
		return nil, err
	}

	history := &History{Goal: l.cfg.Goal}
	for iter := 1; iter <= l.cfg.Iterations; iter++ {
		logger := l.logger.With(log.IterationKey, iter)

		if err := l.client.WaitUntilReady(ctx, l.viewID); err != nil {
			return history, errors.Wrapf(err, "iteration %d", iter)
		}

		selected, err := l.selectCandidates(ctx)
		if err != nil {
			return history, errors.Wrapf(err, "iteration %d", iter)
		}

		measured, err := l.measure(selected)
		if err != nil {
			return history, errors.Wrapf(err, "iteration %d", iter)
		}

		if err := l.upload(ctx, measured); err != nil {
			return history, errors.Wrapf(err, "iteration %d", iter)
		}

		record := Iteration{
			Number:      iter,
			Selected:    measured,
			Best:        l.best,
			BestFormula: l.bestForm,
		}
		history.Iterations = append(history.Iterations, record)
		history.Best = l.best
		history.BestFormula = l.bestForm

		for _, m := range measured {
			logger.Info("candidate measured",
				log.CandidateKey, m.Formula,
				log.PredictedKey, m.Predicted,
				log.MeasuredKey, m.Measured,
				log.BestKey, l.best,
			)
		}

		if l.stopEarly() {
			logger.Info("early-stop target reached", log.BestKey, l.best)
			break
		}
		if iter == l.cfg.Iterations {
			break
		}

		if err := l.client.Retrain(ctx, l.viewID); err != nil {
			return history, errors.Wrapf(err, "iteration %d retrain", iter)
		}
	}
	return history, nil
}

func (l *Loop) stopEarly() bool {
	if l.cfg.EarlyStop == nil {
		return false
	}
	if l.maximize() {
		return l.best >= *l.cfg.EarlyStop
	}
	return l.best <= *l.cfg.EarlyStop
}

func (l *Loop) selectCandidates(ctx context.Context) ([]Measurement, error) {
	if l.cfg.Selection == SelectionPredict {
		return l.selectFromPool(ctx)
	}
	return l.selectFromDesign(ctx)
}

// selectFromDesign asks the platform for suggested experiments and
// takes the highest-ranked unmeasured ones.
func (l *Loop) selectFromDesign(ctx context.Context) ([]Measurement, error) {
	run, err := l.client.SubmitDesignRun(ctx, l.viewID, client.DesignRequest{
		NumCandidates: l.cfg.BatchSize + len(l.measured),
		Effort:        l.cfg.DesignEffort,
		Target:        client.Target{Name: l.cfg.Target, Objective: l.cfg.Goal},
	})
	if err != nil {
		return nil, err
	}
	results, err := l.client.WaitForDesignRun(ctx, l.viewID, run.UID)
	if err != nil {
		return nil, err
	}

	suggestions := results.NextExperiments
	if l.cfg.Acquisition.Name() == "MEI" {
		suggestions = results.BestMaterials
	}

	var selected []Measurement
	for _, cand := range suggestions {
		f := cand.Formula(l.cfg.FormulaDescriptor)
		if f == "" || l.isMeasured(f) {
			continue
		}
		selected = append(selected, Measurement{
			Formula:     f,
			Predicted:   cand.PredictedValue,
			Uncertainty: cand.Uncertainty,
		})
		if len(selected) == l.cfg.BatchSize {
			break
		}
	}
	if len(selected) == 0 {
		return nil, errors.Wrap(errors.ErrPoolExhausted, "design suggestions")
	}
	return selected, nil
}

// selectFromPool predicts every unmeasured pool candidate and ranks
// them with the acquisition function.
func (l *Loop) selectFromPool(ctx context.Context) ([]Measurement, error) {
	var formulas []string
	for _, f := range l.cfg.Pool {
		if !l.isMeasured(f) {
			formulas = append(formulas, f)
		}
	}
	if len(formulas) == 0 {
		return nil, errors.Wrap(errors.ErrPoolExhausted, "local pool")
	}

	candidates := make([]client.Candidate, len(formulas))
	for i, f := range formulas {
		candidates[i] = client.Candidate{l.cfg.FormulaDescriptor: f}
	}
	preds, err := l.client.Predict(ctx, l.viewID, candidates)
	if err != nil {
		return nil, err
	}

	type scored struct {
		m     Measurement
		score float64
	}
	ranked := make([]scored, 0, len(formulas))
	for i, f := range formulas {
		v, err := preds[i].Value(l.cfg.Target)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{
			m: Measurement{
				Formula:     f,
				Predicted:   v.Value,
				Uncertainty: v.Loss,
			},
			score: l.cfg.Acquisition.Score(v.Value, v.Loss, l.best, l.maximize()),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := min(l.cfg.BatchSize, len(ranked))
	selected := make([]Measurement, n)
	for i := 0; i < n; i++ {
		selected[i] = ranked[i].m
	}
	return selected, nil
}

func (l *Loop) isMeasured(f string) bool {
	comp, err := formula.Parse(f)
	if err != nil {
		return true // unparseable candidates are never selected
	}
	return l.measured[comp.Normalized()]
}

// measure evaluates the objective on each selected candidate and
// updates the incumbent best. A panicking objective surfaces as an
// error instead of tearing the loop down.
func (l *Loop) measure(selected []Measurement) ([]Measurement, error) {
	out := make([]Measurement, 0, len(selected))
	for _, m := range selected {
		comp, err := formula.Parse(m.Formula)
		if err != nil {
			return out, errors.Wrapf(err, "candidate %q", m.Formula)
		}

		var value float64
		err = errors.SafeExecute("objective", func() error {
			var evalErr error
			value, evalErr = l.objective.Evaluate(comp)
			return evalErr
		})
		if err != nil {
			return out, errors.Wrapf(err, "measuring %q", m.Formula)
		}

		m.Measured = value
		l.measured[comp.Normalized()] = true
		if l.better(value) {
			l.best = value
			l.bestForm = m.Formula
		}
		out = append(out, m)
	}
	return out, nil
}

// upload appends the new measurements to the loop's dataset.
func (l *Loop) upload(ctx context.Context, measured []Measurement) error {
	systems := make([]*pif.ChemicalSystem, len(measured))
	for i, m := range measured {
		sys := pif.NewChemicalSystem(m.Formula)
		sys.AddProperty(l.cfg.Target, m.Measured, "")
		systems[i] = sys
	}
	_, err := l.client.UploadSystems(ctx, l.cfg.DatasetID, systems)
	return err
}
