package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/citrinelab/citrine/pkg/errors"
)

func TestFitExactLine(t *testing.T) {
	// y = 2x + 1, noiseless
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewDense(5, 1, []float64{1, 3, 5, 7, 9})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	if math.Abs(lr.GetIntercept()-1) > 1e-9 {
		t.Errorf("intercept = %g, want 1", lr.GetIntercept())
	}
	w := lr.GetWeights()
	if len(w) != 1 || math.Abs(w[0]-2) > 1e-9 {
		t.Errorf("weights = %v, want [2]", w)
	}

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{10, -1}))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pred.At(0, 0)-21) > 1e-9 || math.Abs(pred.At(1, 0)-(-1)) > 1e-9 {
		t.Errorf("predictions = [%g %g], want [21 -1]", pred.At(0, 0), pred.At(1, 0))
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("R2 = %g, want 1", score)
	}
}

func TestFitMultiFeature(t *testing.T) {
	// y = 3a - 2b + 0.5
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
		1, 2,
	})
	y := mat.NewDense(6, 1, []float64{0.5, 3.5, -1.5, 1.5, 4.5, -0.5})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	w := lr.GetWeights()
	if math.Abs(w[0]-3) > 1e-9 || math.Abs(w[1]+2) > 1e-9 {
		t.Errorf("weights = %v, want [3 -2]", w)
	}
}

func TestPredictWithUncertainty(t *testing.T) {
	// Noisy line: uncertainty must be positive and grow away from the
	// training range.
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	y := mat.NewDense(8, 1, []float64{0.1, 1.9, 4.2, 5.8, 8.1, 9.9, 12.2, 13.8})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	query := mat.NewDense(2, 1, []float64{3.5, 50})
	pred, sigma, err := lr.PredictWithUncertainty(query)
	if err != nil {
		t.Fatal(err)
	}
	if pred.Len() != 2 || sigma.Len() != 2 {
		t.Fatalf("lengths = %d, %d", pred.Len(), sigma.Len())
	}
	if sigma.AtVec(0) <= 0 {
		t.Errorf("in-range sigma = %g, want > 0", sigma.AtVec(0))
	}
	if sigma.AtVec(1) <= sigma.AtVec(0) {
		t.Errorf("extrapolation sigma %g should exceed interpolation sigma %g",
			sigma.AtVec(1), sigma.AtVec(0))
	}
}

func TestNotFitted(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("expected error")
	}
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("error is %T, want *NotFittedError", err)
	}
}

func TestFitDimensionMismatch(t *testing.T) {
	lr := NewLinearRegression()
	err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	if err == nil {
		t.Fatal("expected error")
	}
	var dim *errors.DimensionError
	if !errors.As(err, &dim) {
		t.Errorf("error is %T, want *DimensionError", err)
	}
}

func TestFitSingular(t *testing.T) {
	// Duplicate columns make X'X singular.
	X := mat.NewDense(3, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
	})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	lr := NewLinearRegression()
	err := lr.Fit(X, y)
	if err == nil {
		t.Fatal("expected singular matrix error")
	}
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Errorf("error %v does not match ErrSingularMatrix", err)
	}
}
