package learn

import (
	"github.com/citrinelab/citrine/formula"
	"github.com/citrinelab/citrine/pkg/errors"
)

// Objective is the ground-truth function the loop "measures"
// candidates with. Real campaigns replace this with an experiment;
// the built-in objectives are cheap stand-ins for demos and tests.
type Objective interface {
	Evaluate(comp *formula.Composition) (float64, error)
}

// ObjectiveFunc adapts a plain function to the Objective interface.
type ObjectiveFunc func(comp *formula.Composition) (float64, error)

func (f ObjectiveFunc) Evaluate(comp *formula.Composition) (float64, error) {
	return f(comp)
}

// LinearObjective is a weighted sum of atomic fractions. Elements
// without a weight contribute nothing.
type LinearObjective struct {
	Weights map[string]float64
	Offset  float64
}

func (o *LinearObjective) Evaluate(comp *formula.Composition) (float64, error) {
	if comp == nil {
		return 0, errors.NewValueError("objective", "nil composition")
	}
	value := o.Offset
	for element, fraction := range comp.AtomicFractions() {
		value += o.Weights[element] * fraction
	}
	return value, nil
}

// PeakObjective has a single optimum at a target composition and
// falls off quadratically with distance from it. Height is the value
// at the optimum; Width controls how fast it decays.
type PeakObjective struct {
	Target map[string]float64
	Height float64
	Width  float64
}

func (o *PeakObjective) Evaluate(comp *formula.Composition) (float64, error) {
	if comp == nil {
		return 0, errors.NewValueError("objective", "nil composition")
	}
	width := o.Width
	if width <= 0 {
		width = 1
	}

	fractions := comp.AtomicFractions()
	var dist2 float64
	seen := make(map[string]bool, len(fractions))
	for element, fraction := range fractions {
		d := fraction - o.Target[element]
		dist2 += d * d
		seen[element] = true
	}
	for element, target := range o.Target {
		if !seen[element] {
			dist2 += target * target
		}
	}
	return o.Height - dist2/(width*width), nil
}
