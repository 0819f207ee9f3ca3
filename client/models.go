package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

// Candidate is one record submitted for prediction, keyed by
// descriptor name. Values are strings for Inorganic descriptors
// (formulas) and numbers for Real descriptors.
type Candidate map[string]any

// PredictedValue is a model output with its uncertainty estimate.
type PredictedValue struct {
	Value float64 `json:"value"`
	Loss  float64 `json:"loss"`
}

// Prediction holds the predicted values for one candidate.
type Prediction struct {
	Values map[string]PredictedValue `json:"values"`
}

// Value returns the prediction for a named descriptor.
func (p Prediction) Value(name string) (PredictedValue, error) {
	v, ok := p.Values[name]
	if !ok {
		return PredictedValue{}, errors.Newf("no predicted value for descriptor %q", name)
	}
	return v, nil
}

type predictRequest struct {
	Candidates []Candidate `json:"candidates"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Predict runs a view's trained model over candidates, returning one
// prediction per candidate, in order. The view's predict service must
// be ready; a 409 from the platform maps to a NotTrainedError.
func (c *Client) Predict(ctx context.Context, viewID string, candidates []Candidate) ([]Prediction, error) {
	if len(candidates) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "predict")
	}

	var resp predictResponse
	path := "/api/data_views/" + viewID + "/predict"
	if err := c.doJSON(ctx, http.MethodPost, path, predictRequest{Candidates: candidates}, &resp); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, errors.NewNotTrainedError(viewID, "predict", apiErr.Message)
		}
		return nil, err
	}
	if len(resp.Predictions) != len(candidates) {
		return nil, errors.Newf("predict returned %d results for %d candidates", len(resp.Predictions), len(candidates))
	}

	c.logger.Debug("predicted", log.ViewIDKey, viewID, log.SamplesKey, len(candidates))
	return resp.Predictions, nil
}

// Design goals and samplers.
const (
	GoalMax = "Max"
	GoalMin = "Min"

	SamplerDefault         = "Default"
	SamplerThisView        = "This view"
	DefaultDesignEffort    = 3
	DefaultDesignCandidate = 10
)

// Target names the output descriptor a design run optimizes and the
// direction of improvement (GoalMax or GoalMin).
type Target struct {
	Name      string `json:"descriptor"`
	Objective string `json:"objective"`
}

// Constraint restricts the candidate space searched by a design run.
type Constraint struct {
	Name     string   `json:"descriptor"`
	Type     string   `json:"type"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Elements []string `json:"elements,omitempty"`
}

// DesignRequest configures an experimental design run.
type DesignRequest struct {
	NumCandidates int          `json:"num_candidates"`
	Effort        int          `json:"effort"`
	Target        Target       `json:"target"`
	Constraints   []Constraint `json:"constraints,omitempty"`
	Sampler       string       `json:"sampler,omitempty"`
}

// DesignRun identifies a submitted design job.
type DesignRun struct {
	UID string `json:"uid"`
}

// DesignRunStatus reports a design run's progress.
type DesignRunStatus struct {
	UID      string `json:"uid"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// Finished reports whether the run reached a terminal state.
func (s DesignRunStatus) Finished() bool {
	return s.Status == "Finished" || s.Status == "Killed" || s.Status == "Error"
}

// DesignCandidate is one material suggested by a design run.
type DesignCandidate struct {
	DescriptorValues map[string]string `json:"descriptor_values"`
	PredictedValue   float64           `json:"predicted_value"`
	Uncertainty      float64           `json:"uncertainty"`
	Score            float64           `json:"citrine_score"`
}

// Formula returns the candidate's value for the named descriptor,
// conventionally the formula input.
func (d DesignCandidate) Formula(descriptor string) string {
	return d.DescriptorValues[descriptor]
}

// DesignResults holds the two candidate lists a finished run produces:
// the predicted-best materials and the most informative next
// experiments.
type DesignResults struct {
	BestMaterials   []DesignCandidate `json:"best_materials"`
	NextExperiments []DesignCandidate `json:"next_experiments"`
}

// SubmitDesignRun starts an experimental design job on a trained view.
func (c *Client) SubmitDesignRun(ctx context.Context, viewID string, req DesignRequest) (*DesignRun, error) {
	if req.Target.Name == "" {
		return nil, errors.NewValidationError("target", "design target required", "")
	}
	if req.Target.Objective != GoalMax && req.Target.Objective != GoalMin {
		return nil, errors.NewValidationError("target", "objective must be Max or Min", req.Target.Objective)
	}
	if req.NumCandidates <= 0 {
		req.NumCandidates = DefaultDesignCandidate
	}
	if req.Effort <= 0 {
		req.Effort = DefaultDesignEffort
	}

	var run DesignRun
	path := "/api/data_views/" + viewID + "/experimental_design"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &run); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, errors.NewNotTrainedError(viewID, "experimental_design", apiErr.Message)
		}
		return nil, err
	}

	c.logger.Info("design run submitted",
		log.ViewIDKey, viewID,
		log.RunIDKey, run.UID,
		"target", req.Target.Name,
		"objective", req.Target.Objective,
	)
	return &run, nil
}

// DesignRunStatus fetches the status of a design run.
func (c *Client) DesignRunStatus(ctx context.Context, viewID, runID string) (*DesignRunStatus, error) {
	var status DesignRunStatus
	path := fmt.Sprintf("/api/data_views/%s/experimental_design/%s/status", viewID, runID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DesignRunResults fetches the results of a finished design run.
func (c *Client) DesignRunResults(ctx context.Context, viewID, runID string) (*DesignResults, error) {
	var results DesignResults
	path := fmt.Sprintf("/api/data_views/%s/experimental_design/%s/results", viewID, runID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// WaitForDesignRun polls a design run until it finishes, then returns
// its results. Killed or errored runs return an error.
func (c *Client) WaitForDesignRun(ctx context.Context, viewID, runID string) (*DesignResults, error) {
	var last DesignRunStatus
	err := c.pollJob(ctx, "design", runID, func(ctx context.Context) (bool, string, error) {
		status, err := c.DesignRunStatus(ctx, viewID, runID)
		if err != nil {
			return false, "", err
		}
		last = *status
		return status.Finished(), status.Status, nil
	})
	if err != nil {
		return nil, err
	}
	if last.Status != "Finished" {
		return nil, errors.Newf("design run %s ended with status %q", runID, last.Status)
	}
	return c.DesignRunResults(ctx, viewID, runID)
}
