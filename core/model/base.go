// Package model defines the base types and interfaces shared by the local
// estimators (the fake platform's view trainer and the preprocessing
// transformers).
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted marks an estimator that has not seen training data.
	NotFitted EstimatorState = iota
	// Fitted marks an estimator that has been trained.
	Fitted
)

// BaseEstimator is embedded by every local estimator to carry fitted state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
