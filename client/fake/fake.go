// Package fake runs an in-process Citrination look-alike backed by
// httptest. It stores datasets in memory and trains a linear model per
// data view over featurized chemical formulas, so prediction and
// design return self-consistent values with uncertainties. It exists
// for tests and for offline runs of the learning loop.
package fake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/citrinelab/citrine/pif"
)

// Platform is the in-memory backend. Create one with New, point a
// client at URL(), and Close when done.
type Platform struct {
	mu sync.Mutex

	apiKey string
	server *httptest.Server

	datasets      map[int]*datasetState
	nextDatasetID int

	views map[string]*viewState
	runs  map[string]*designState

	trainPolls  int
	designPolls int
	designPool  []string
}

type datasetState struct {
	meta    dataset
	systems []*pif.ChemicalSystem
}

type dataset struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     int    `json:"version"`
	SystemCount int    `json:"system_count"`
}

type viewState struct {
	id     string
	config viewConfig
	model  *viewModel
	// polls remaining before the view reports ready
	pending int
}

type designState struct {
	viewID  string
	req     designRequest
	results *designResults
	// polls remaining before the run reports finished
	pending int
}

// Option configures a Platform.
type Option func(*Platform)

// WithAPIKey requires requests to carry the given X-API-Key.
func WithAPIKey(key string) Option {
	return func(p *Platform) { p.apiKey = key }
}

// WithTrainPolls makes views report "Training" for n status calls
// before becoming ready, to exercise polling paths.
func WithTrainPolls(n int) Option {
	return func(p *Platform) { p.trainPolls = n }
}

// WithDesignPolls makes design runs report "Running" for n status
// calls before finishing.
func WithDesignPolls(n int) Option {
	return func(p *Platform) { p.designPolls = n }
}

// WithDesignPool sets the candidate formulas design runs score. When
// unset, runs score the training formulas themselves.
func WithDesignPool(formulas []string) Option {
	return func(p *Platform) { p.designPool = formulas }
}

// New starts the fake platform.
func New(opts ...Option) *Platform {
	p := &Platform{
		datasets:      make(map[int]*datasetState),
		nextDatasetID: 1,
		views:         make(map[string]*viewState),
		runs:          make(map[string]*designState),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.server = httptest.NewServer(p.handler())
	return p
}

// URL returns the platform's base URL.
func (p *Platform) URL() string { return p.server.URL }

// Close shuts the platform down.
func (p *Platform) Close() { p.server.Close() }

// SystemCount reports how many records a dataset holds.
func (p *Platform) SystemCount(datasetID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ds, ok := p.datasets[datasetID]; ok {
		return len(ds.systems)
	}
	return 0
}

func (p *Platform) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/datasets", p.createDataset)
	mux.HandleFunc("POST /api/datasets/{id}", p.updateDataset)
	mux.HandleFunc("GET /api/datasets/{id}", p.getDataset)
	mux.HandleFunc("GET /api/datasets/{id}/files", p.listFiles)
	mux.HandleFunc("POST /api/datasets/{id}/pif/json", p.uploadSystems)
	mux.HandleFunc("POST /api/data_views", p.createView)
	mux.HandleFunc("GET /api/data_views/{id}", p.getView)
	mux.HandleFunc("GET /api/data_views/{id}/status", p.viewStatus)
	mux.HandleFunc("POST /api/data_views/{id}/retrain", p.retrainView)
	mux.HandleFunc("POST /api/data_views/{id}/predict", p.predict)
	mux.HandleFunc("POST /api/data_views/{id}/experimental_design", p.submitDesign)
	mux.HandleFunc("GET /api/data_views/{id}/experimental_design/{run}/status", p.designStatus)
	mux.HandleFunc("GET /api/data_views/{id}/experimental_design/{run}/results", p.designResultsHandler)
	mux.HandleFunc("POST /api/search/pif_search", p.search)
	return p.authenticate(mux)
}

func (p *Platform) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.apiKey != "" && r.Header.Get("X-API-Key") != p.apiKey {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil
}

func (p *Platform) createDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "dataset name required")
		return
	}

	p.mu.Lock()
	id := p.nextDatasetID
	p.nextDatasetID++
	ds := &datasetState{meta: dataset{ID: id, Name: req.Name, Description: req.Description}}
	p.datasets[id] = ds
	meta := ds.meta
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, meta)
}

func (p *Platform) updateDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad dataset id")
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad request body")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ds, ok := p.datasets[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("dataset %d not found", id))
		return
	}
	if req.Name != "" {
		ds.meta.Name = req.Name
	}
	if req.Description != "" {
		ds.meta.Description = req.Description
	}
	writeJSON(w, http.StatusOK, ds.meta)
}

func (p *Platform) getDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad dataset id")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ds, ok := p.datasets[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("dataset %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, ds.meta)
}

func (p *Platform) listFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad dataset id")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ds, ok := p.datasets[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("dataset %d not found", id))
		return
	}
	files := make([]map[string]any, 0, ds.meta.Version)
	for v := 1; v <= ds.meta.Version; v++ {
		files = append(files, map[string]any{
			"filename": fmt.Sprintf("upload_v%d.json", v),
			"url":      fmt.Sprintf("%s/files/%d/upload_v%d.json", p.server.URL, id, v),
			"version":  v,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (p *Platform) uploadSystems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad dataset id")
		return
	}
	var req struct {
		Systems []*pif.ChemicalSystem `json:"systems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad request body")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ds, ok := p.datasets[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("dataset %d not found", id))
		return
	}
	ds.systems = append(ds.systems, req.Systems...)
	ds.meta.Version++
	ds.meta.SystemCount = len(ds.systems)
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset_id": id,
		"version":    ds.meta.Version,
		"accepted":   len(req.Systems),
	})
}

func (p *Platform) createView(w http.ResponseWriter, r *http.Request) {
	var cfg viewConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad view configuration")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	systems, err := p.collectSystemsLocked(cfg.DatasetIDs)
	if err != nil {
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
		return
	}
	model, err := trainView(cfg, systems)
	if err != nil {
		writeError(w, http.StatusBadRequest, "TrainingFailed", err.Error())
		return
	}

	vs := &viewState{
		id:      uuid.NewString(),
		config:  cfg,
		model:   model,
		pending: p.trainPolls,
	}
	p.views[vs.id] = vs
	writeJSON(w, http.StatusOK, map[string]any{
		"id":            vs.id,
		"name":          cfg.Name,
		"description":   cfg.Description,
		"configuration": cfg,
	})
}

func (p *Platform) collectSystemsLocked(ids []int) ([]*pif.ChemicalSystem, error) {
	var systems []*pif.ChemicalSystem
	for _, id := range ids {
		ds, ok := p.datasets[id]
		if !ok {
			return nil, fmt.Errorf("dataset %d not found", id)
		}
		systems = append(systems, ds.systems...)
	}
	return systems, nil
}

func (p *Platform) getView(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vs, ok := p.views[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "view not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":            vs.id,
		"name":          vs.config.Name,
		"description":   vs.config.Description,
		"configuration": vs.config,
	})
}

func (p *Platform) viewStatus(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vs, ok := p.views[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "view not found")
		return
	}

	status := map[string]any{"ready": true, "status": "Ready"}
	if vs.pending > 0 {
		vs.pending--
		status = map[string]any{"ready": false, "status": "Training"}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predict":             status,
		"experimental_design": status,
		"model_reports":       status,
	})
}

func (p *Platform) retrainView(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vs, ok := p.views[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "view not found")
		return
	}
	systems, err := p.collectSystemsLocked(vs.config.DatasetIDs)
	if err != nil {
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
		return
	}
	model, err := trainView(vs.config, systems)
	if err != nil {
		writeError(w, http.StatusBadRequest, "TrainingFailed", err.Error())
		return
	}
	vs.model = model
	vs.pending = p.trainPolls
	w.WriteHeader(http.StatusOK)
}

func (p *Platform) predict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Candidates []map[string]any `json:"candidates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad request body")
		return
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

	predictions := make([]map[string]any, 0, len(req.Candidates))
	for _, cand := range req.Candidates {
		values, err := vs.model.predictCandidate(cand)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BadCandidate", err.Error())
			return
		}
		predictions = append(predictions, map[string]any{"values": values})
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": predictions})
}

func (p *Platform) search(w http.ResponseWriter, r *http.Request) {
	var q struct {
		DatasetID    int    `json:"dataset_id"`
		Formula      string `json:"formula"`
		PropertyName string `json:"property_name"`
		From         int    `json:"from"`
		Size         int    `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad query")
		return
	}
	if q.Size <= 0 {
		q.Size = 100
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []*pif.ChemicalSystem
	for id, ds := range p.datasets {
		if q.DatasetID != 0 && q.DatasetID != id {
			continue
		}
		for _, sys := range ds.systems {
			if q.Formula != "" && sys.ChemicalFormula != q.Formula {
				continue
			}
			if q.PropertyName != "" {
				if _, ok := sys.Property(q.PropertyName); !ok {
					continue
				}
			}
			matched = append(matched, sys)
		}
	}

	hits := make([]map[string]any, 0, q.Size)
	for i := q.From; i < len(matched) && len(hits) < q.Size; i++ {
		hits = append(hits, map[string]any{
			"id":     fmt.Sprintf("hit-%d", i),
			"system": matched[i],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(matched), "hits": hits})
}
