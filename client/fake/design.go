package fake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
)

type designTarget struct {
	Name      string `json:"descriptor"`
	Objective string `json:"objective"`
}

type designRequest struct {
	NumCandidates int          `json:"num_candidates"`
	Effort        int          `json:"effort"`
	Target        designTarget `json:"target"`
	Sampler       string       `json:"sampler"`
}

type designCandidate struct {
	DescriptorValues map[string]string `json:"descriptor_values"`
	PredictedValue   float64           `json:"predicted_value"`
	Uncertainty      float64           `json:"uncertainty"`
	Score            float64           `json:"citrine_score"`
}

type designResults struct {
	BestMaterials   []designCandidate `json:"best_materials"`
	NextExperiments []designCandidate `json:"next_experiments"`
}

func (p *Platform) submitDesign(w http.ResponseWriter, r *http.Request) {
	var req designRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad request body")
		return
	}
	if req.NumCandidates <= 0 {
		req.NumCandidates = 10
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	vs, ok := p.views[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "view not found")
		return
	}
	if vs.pending > 0 {
		writeError(w, http.StatusConflict, "NotTrained", "view is still training")
		return
	}

	results, err := p.runDesignLocked(vs, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "DesignFailed", err.Error())
		return
	}

	run := &designState{
		viewID:  vs.id,
		req:     req,
		results: results,
		pending: p.designPolls,
	}
	uid := uuid.NewString()
	p.runs[uid] = run
	writeJSON(w, http.StatusOK, map[string]string{"uid": uid})
}

// runDesignLocked scores the candidate pool against the view's model.
// Best materials rank by predicted value; next experiments rank by an
// improvement-likelihood score that rewards uncertainty.
func (p *Platform) runDesignLocked(vs *viewState, req designRequest) (*designResults, error) {
	target := req.Target.Name
	if _, ok := vs.model.models[target]; !ok {
		return nil, fmt.Errorf("view has no output descriptor %q", target)
	}

	pool := p.designPool
	if len(pool) == 0 {
		pool = vs.model.formulas
	}

	maximize := req.Target.Objective != "Min"
	best := vs.model.observedBest[target]

	candidates := make([]designCandidate, 0, len(pool))
	for _, f := range pool {
		values, err := vs.model.predictCandidate(map[string]any{vs.model.formulaDescriptor: f})
		if err != nil {
			// pool entries outside the trained element basis are skipped
			continue
		}
		v := values[target]
		pred, sigma := v["value"], v["loss"]

		score := pred + sigma - best
		if !maximize {
			score = best - (pred - sigma)
		}
		candidates = append(candidates, designCandidate{
			DescriptorValues: map[string]string{vs.model.formulaDescriptor: f},
			PredictedValue:   pred,
			Uncertainty:      sigma,
			Score:            score,
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate in the pool is predictable by this view")
	}

	byScore := append([]designCandidate{}, candidates...)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].Score > byScore[j].Score })

	byValue := append([]designCandidate{}, candidates...)
	sort.SliceStable(byValue, func(i, j int) bool {
		if maximize {
			return byValue[i].PredictedValue > byValue[j].PredictedValue
		}
		return byValue[i].PredictedValue < byValue[j].PredictedValue
	})

	n := min(req.NumCandidates, len(candidates))
	return &designResults{
		BestMaterials:   byValue[:n],
		NextExperiments: byScore[:n],
	}, nil
}

func (p *Platform) designStatus(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	run, ok := p.runs[r.PathValue("run")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "design run not found")
		return
	}

	status, progress := "Finished", 100
	if run.pending > 0 {
		run.pending--
		status, progress = "Running", 100*(p.designPolls-run.pending)/(p.designPolls+1)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":      r.PathValue("run"),
		"status":   status,
		"progress": progress,
	})
}

func (p *Platform) designResultsHandler(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	run, ok := p.runs[r.PathValue("run")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "design run not found")
		return
	}
	if run.pending > 0 {
		writeError(w, http.StatusConflict, "NotFinished", "design run is still running")
		return
	}
	writeJSON(w, http.StatusOK, run.results)
}
