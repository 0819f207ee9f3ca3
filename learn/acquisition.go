// Package learn drives a sequential-learning loop against a trained
// data view: select candidates, measure them with an objective, append
// the measurements to the dataset, and retrain.
package learn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Acquisition scores an unmeasured candidate from its prediction. The
// loop selects the highest-scoring candidates each iteration.
type Acquisition interface {
	Name() string
	// Score ranks a candidate given its predicted value, the model's
	// uncertainty, and the best measured value so far. maximize is
	// false when the loop minimizes the target.
	Score(pred, sigma, best float64, maximize bool) float64
}

// improvement returns the predicted gain over the incumbent in the
// direction of the goal.
func improvement(pred, best float64, maximize bool) float64 {
	if maximize {
		return pred - best
	}
	return best - pred
}

// MLI scores by the likelihood that a candidate improves on the best
// measurement, assuming a normal predictive distribution.
type MLI struct{}

func (MLI) Name() string { return "MLI" }

func (MLI) Score(pred, sigma, best float64, maximize bool) float64 {
	imp := improvement(pred, best, maximize)
	if sigma <= 0 {
		if imp > 0 {
			return 1
		}
		return 0
	}
	return distuv.UnitNormal.CDF(imp / sigma)
}

// MEI scores by the expected magnitude of improvement over the best
// measurement.
type MEI struct{}

func (MEI) Name() string { return "MEI" }

func (MEI) Score(pred, sigma, best float64, maximize bool) float64 {
	imp := improvement(pred, best, maximize)
	if sigma <= 0 {
		return math.Max(imp, 0)
	}
	z := imp / sigma
	return imp*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z)
}

// Random scores candidates uniformly at random. It is the baseline the
// model-driven strategies are compared against.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random acquisition with a fixed seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (*Random) Name() string { return "Random" }

func (r *Random) Score(pred, sigma, best float64, maximize bool) float64 {
	return r.rng.Float64()
}

// ParseAcquisition maps a strategy name to its implementation.
// Recognized names are "MLI", "MEI" and "Random".
func ParseAcquisition(name string, seed int64) (Acquisition, bool) {
	switch name {
	case "MLI", "mli", "":
		return MLI{}, true
	case "MEI", "mei":
		return MEI{}, true
	case "Random", "random":
		return NewRandom(seed), true
	}
	return nil, false
}
