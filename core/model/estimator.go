package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained.
type Fitter interface {
	// Fit trains the model on X (samples x features) and y (samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that produces point predictions.
type Predictor interface {
	// Predict returns predictions for X as a samples x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// UncertaintyPredictor is a model that reports a standard error alongside
// each prediction. Acquisition scoring in the sequential-learning loop
// requires this.
type UncertaintyPredictor interface {
	Predictor

	// PredictWithUncertainty returns predictions and their one-sigma
	// uncertainties, both samples x 1.
	PredictWithUncertainty(X mat.Matrix) (pred, sigma *mat.VecDense, err error)
}

// Regressor is a trainable model with a quality score.
type Regressor interface {
	Fitter
	Predictor

	// Score returns the coefficient of determination R^2 on X, y.
	Score(X, y mat.Matrix) (float64, error)
}
