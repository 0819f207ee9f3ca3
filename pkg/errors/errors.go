// Package errors provides error handling and the warning system used across
// the citrine client. Errors carry stack traces via cockroachdb/errors and
// marshal structured context into zerolog events.
package errors

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("citrine-warning: %v\n", w)
	}
	// zerolog hook, installed lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the process-wide warning handler. Warnings are
// non-fatal conditions (throttled requests, degenerate features) that the
// library reports without failing the operation.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through a zerolog-backed logger.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the zerolog hook when one is installed,
// falling back to the plain handler otherwise.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// RateLimitWarning is raised when the platform throttles a request and the
// client backs off before retrying.
type RateLimitWarning struct {
	Method     string
	Path       string
	RetryAfter time.Duration
	Attempt    int
}

func (w *RateLimitWarning) Error() string {
	return fmt.Sprintf("rate limited on %s %s (attempt %d), backing off %s",
		w.Method, w.Path, w.Attempt, w.RetryAfter)
}

// MarshalZerologObject adds structured warning context to a zerolog event.
func (w *RateLimitWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("method", w.Method).
		Str("path", w.Path).
		Dur("retry_after", w.RetryAfter).
		Int("attempt", w.Attempt).
		Str("type", "RateLimitWarning")
}

// NewRateLimitWarning creates a new RateLimitWarning.
func NewRateLimitWarning(method, path string, retryAfter time.Duration, attempt int) *RateLimitWarning {
	return &RateLimitWarning{Method: method, Path: path, RetryAfter: retryAfter, Attempt: attempt}
}

// DegenerateFeatureWarning is raised when a feature column has zero variance
// and scaling or acquisition scoring falls back to a neutral value.
type DegenerateFeatureWarning struct {
	Feature string
	Value   float64
}

func (w *DegenerateFeatureWarning) Error() string {
	return fmt.Sprintf("feature %q has zero variance (constant value %g); scale set to 1", w.Feature, w.Value)
}

// MarshalZerologObject adds structured warning context to a zerolog event.
func (w *DegenerateFeatureWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("feature", w.Feature).
		Float64("value", w.Value).
		Str("type", "DegenerateFeatureWarning")
}

// NewDegenerateFeatureWarning creates a new DegenerateFeatureWarning.
func NewDegenerateFeatureWarning(feature string, value float64) *DegenerateFeatureWarning {
	return &DegenerateFeatureWarning{Feature: feature, Value: value}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// APIError is a non-retryable response from the platform (4xx, or a 5xx that
// survived the retry budget). Code is the platform's machine-readable error
// code when the body carried one.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("citrine: %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("citrine: %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *APIError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("method", e.Method).
		Str("path", e.Path).
		Int("status_code", e.StatusCode).
		Str("code", e.Code).
		Str("message", e.Message).
		Str("request_id", e.RequestID).
		Str("type", "APIError")
}

// NewAPIError creates a new APIError with a stack trace attached.
func NewAPIError(method, path string, status int, code, message, requestID string) error {
	err := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Code:       code,
		Message:    message,
		RequestID:  requestID,
	}
	return errors.WithStack(err)
}

// NotTrainedError is returned when a data view's predict or design service
// is invoked before training has finished.
type NotTrainedError struct {
	ViewID  string
	Service string
	Status  string
}

func (e *NotTrainedError) Error() string {
	return fmt.Sprintf("citrine: view %s: %s service not ready (status %q)", e.ViewID, e.Service, e.Status)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *NotTrainedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("view_id", e.ViewID).
		Str("service", e.Service).
		Str("status", e.Status).
		Str("type", "NotTrainedError")
}

// NewNotTrainedError creates a new NotTrainedError with a stack trace attached.
func NewNotTrainedError(viewID, service, status string) error {
	err := &NotTrainedError{ViewID: viewID, Service: service, Status: status}
	return errors.WithStack(err)
}

// NotFittedError is returned when a local estimator is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("citrine: %s: not fitted yet, call Fit() before %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// JobTimeoutError is returned when polling a long-running platform job
// (view training, design run) exceeds its deadline. LastStatus records the
// most recent status the poller observed.
type JobTimeoutError struct {
	Kind       string
	ID         string
	LastStatus string
	Elapsed    time.Duration
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("citrine: %s %s did not finish within %s (last status %q)",
		e.Kind, e.ID, e.Elapsed.Round(time.Second), e.LastStatus)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *JobTimeoutError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.Kind).
		Str("id", e.ID).
		Str("last_status", e.LastStatus).
		Dur("elapsed", e.Elapsed).
		Str("type", "JobTimeoutError")
}

// NewJobTimeoutError creates a new JobTimeoutError with a stack trace attached.
func NewJobTimeoutError(kind, id, lastStatus string, elapsed time.Duration) error {
	err := &JobTimeoutError{Kind: kind, ID: id, LastStatus: lastStatus, Elapsed: elapsed}
	return errors.WithStack(err)
}

// ParseError is returned when a chemical formula or PIF record cannot be
// parsed. Position is a zero-based offset into the input when known, -1
// otherwise.
type ParseError struct {
	Input    string
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("citrine: cannot parse %q at offset %d: %s", e.Input, e.Position, e.Reason)
	}
	return fmt.Sprintf("citrine: cannot parse %q: %s", e.Input, e.Reason)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *ParseError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("input", e.Input).
		Int("position", e.Position).
		Str("reason", e.Reason).
		Str("type", "ParseError")
}

// NewParseError creates a new ParseError with a stack trace attached.
func NewParseError(input string, position int, reason string) error {
	err := &ParseError{Input: input, Position: position, Reason: reason}
	return errors.WithStack(err)
}

// DimensionError reports a dimension mismatch between two data structures.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("citrine: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports an invalid parameter value.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("citrine: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("citrine: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general error raised by a local estimator.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("citrine: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("citrine: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a new ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors passthroughs
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Numerical error types
//
// ===========================================================================

// NumericalInstabilityError reports NaN or Inf reaching a numeric operation.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("citrine: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a new NumericalInstabilityError.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrNotImplemented signals a feature that is not implemented.
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData signals empty input data.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix signals a singular matrix in a least-squares solve.
	ErrSingularMatrix = New("singular matrix")

	// ErrPoolExhausted signals that a design-space candidate pool has no
	// unmeasured candidates left.
	ErrPoolExhausted = New("candidate pool exhausted")
)
