// Package linear implements ordinary least-squares regression with
// prediction uncertainties. The fake platform backend trains one of these
// per data view, and the uncertainty estimate is what acquisition scoring
// in the sequential-learning loop consumes.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/citrinelab/citrine/core/model"
	"github.com/citrinelab/citrine/core/parallel"
	"github.com/citrinelab/citrine/pkg/errors"
)

// LinearRegression is an ordinary least-squares model fitted by the normal
// equations.
type LinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // coefficients
	Intercept float64
	NFeatures int

	// sigma2 is the residual variance; covInv is (X'X)^-1 over the
	// intercept-augmented design matrix. Together they give per-point
	// prediction standard errors.
	sigma2 float64
	covInv *mat.Dense
}

// NewLinearRegression creates an unfitted model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// rows below this threshold are processed sequentially
const parallelThreshold = 1000

// Fit trains the model on X (samples x features) and y (samples x 1) by
// solving the normal equations w = (X'X)^-1 X'y over the
// intercept-augmented design matrix.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// Augment X with a column of ones for the intercept.
	XWithIntercept := mat.NewDense(r, c+1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var XT mat.Dense
	XT.CloneFrom(XWithIntercept.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XWithIntercept)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(c+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	lr.Intercept = weights.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+1))
	}

	// Residual variance with the usual degrees-of-freedom correction;
	// saturated fits fall back to zero variance.
	var rss float64
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		diff := y.At(i, 0) - pred
		rss += diff * diff
	}
	dof := r - (c + 1)
	if dof > 0 {
		lr.sigma2 = rss / float64(dof)
	} else {
		lr.sigma2 = 0
	}
	lr.covInv = &XTXInv

	lr.SetFitted()

	return nil
}

// Predict returns point predictions for X as a samples x 1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// PredictWithUncertainty returns predictions and their one-sigma predictive
// standard errors: sqrt(sigma2 * (1 + x' (X'X)^-1 x)) per point, covering
// both model and observation noise.
func (lr *LinearRegression) PredictWithUncertainty(X mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if !lr.IsFitted() {
		return nil, nil, errors.NewNotFittedError("LinearRegression", "PredictWithUncertainty")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, nil, errors.NewDimensionError("LinearRegression.PredictWithUncertainty", lr.NFeatures, c, 1)
	}

	pred := mat.NewVecDense(r, nil)
	sigma := mat.NewVecDense(r, nil)

	aug := mat.NewVecDense(c+1, nil)
	tmp := mat.NewVecDense(c+1, nil)

	for i := 0; i < r; i++ {
		p := lr.Intercept
		aug.SetVec(0, 1)
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			p += v * lr.Weights.AtVec(j)
			aug.SetVec(j+1, v)
		}
		pred.SetVec(i, p)

		// leverage = x' (X'X)^-1 x
		tmp.MulVec(lr.covInv, aug)
		leverage := mat.Dot(aug, tmp)
		if leverage < 0 {
			leverage = 0
		}
		sigma.SetVec(i, math.Sqrt(lr.sigma2*(1+leverage)))
	}

	return pred, sigma, nil
}

// GetWeights returns the fitted coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept returns the fitted intercept.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// ResidualVariance returns the fitted residual variance.
func (lr *LinearRegression) ResidualVariance() float64 {
	return lr.sigma2
}

// Score returns the coefficient of determination R^2 on X, y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)

		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}
