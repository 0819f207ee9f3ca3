package learn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/citrinelab/citrine/formula"
)

func TestMLIScore(t *testing.T) {
	mli := MLI{}

	// more predicted improvement, same uncertainty
	assert.Greater(t,
		mli.Score(2.0, 0.5, 1.0, true),
		mli.Score(1.2, 0.5, 1.0, true))

	// below the incumbent, more uncertainty helps
	assert.Greater(t,
		mli.Score(0.8, 1.0, 1.0, true),
		mli.Score(0.8, 0.1, 1.0, true))

	// zero uncertainty degenerates to a step
	assert.Equal(t, 1.0, mli.Score(2.0, 0, 1.0, true))
	assert.Equal(t, 0.0, mli.Score(0.5, 0, 1.0, true))

	// minimization mirrors maximization
	assert.Equal(t,
		mli.Score(2.0, 0.5, 1.0, true),
		mli.Score(0.0, 0.5, 1.0, false))
}

func TestMEIScore(t *testing.T) {
	mei := MEI{}

	assert.Greater(t,
		mei.Score(2.0, 0.5, 1.0, true),
		mei.Score(1.5, 0.5, 1.0, true))

	// expected improvement is never negative
	assert.GreaterOrEqual(t, mei.Score(-5.0, 0.5, 1.0, true), 0.0)
	assert.Equal(t, 0.0, mei.Score(0.5, 0, 1.0, true))

	// with zero uncertainty EI is exactly the predicted gain
	assert.InDelta(t, 1.0, mei.Score(2.0, 0, 1.0, true), 1e-12)
}

func TestRandomIsSeeded(t *testing.T) {
	a := NewRandom(42)
	b := NewRandom(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Score(0, 0, 0, true), b.Score(0, 0, 0, true))
	}
}

func TestParseAcquisition(t *testing.T) {
	for name, want := range map[string]string{
		"":       "MLI",
		"MLI":    "MLI",
		"mei":    "MEI",
		"Random": "Random",
	} {
		acq, ok := ParseAcquisition(name, 1)
		assert.True(t, ok, name)
		assert.Equal(t, want, acq.Name())
	}

	_, ok := ParseAcquisition("thompson", 1)
	assert.False(t, ok)
}

func TestLinearObjective(t *testing.T) {
	obj := &LinearObjective{Weights: map[string]float64{"Cu": 2}, Offset: 1}

	v, err := obj.Evaluate(formula.MustParse("Cu"))
	assert.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-12)

	v, err = obj.Evaluate(formula.MustParse("CuZn"))
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	_, err = obj.Evaluate(nil)
	assert.Error(t, err)
}

func TestPeakObjective(t *testing.T) {
	obj := &PeakObjective{
		Target: map[string]float64{"Cu": 0.75, "Zn": 0.25},
		Height: 10,
		Width:  0.5,
	}

	atPeak, err := obj.Evaluate(formula.MustParse("Cu3Zn"))
	assert.NoError(t, err)
	assert.InDelta(t, 10.0, atPeak, 1e-12)

	off, err := obj.Evaluate(formula.MustParse("Zn"))
	assert.NoError(t, err)
	assert.Less(t, off, atPeak)
}
