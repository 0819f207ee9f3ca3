package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

// Descriptor declares one column of a data view. Category is
// "Input" or "Output"; Type selects the featurizer on the platform
// side ("Inorganic" for chemical formulas, "Real" for numbers).
type Descriptor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

// Descriptor categories and types.
const (
	CategoryInput  = "Input"
	CategoryOutput = "Output"

	TypeInorganic = "Inorganic"
	TypeReal      = "Real"
)

// ViewConfig is the ML configuration a data view is built from.
type ViewConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	DatasetIDs  []int        `json:"dataset_ids"`
	Descriptors []Descriptor `json:"descriptors"`
}

// FormulaDescriptor returns an Inorganic input descriptor.
func FormulaDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Category: CategoryInput, Type: TypeInorganic}
}

// RealDescriptor returns a Real descriptor with the given category.
func RealDescriptor(name, category string) Descriptor {
	return Descriptor{Name: name, Category: category, Type: TypeReal}
}

// DataView is a trained (or training) ML configuration over datasets.
type DataView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Config      ViewConfig `json:"configuration"`
}

// ServiceStatus reports the readiness of one service backed by a view.
type ServiceStatus struct {
	Ready  bool   `json:"ready"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ViewStatus groups the per-service statuses of a data view.
type ViewStatus struct {
	Predict            ServiceStatus `json:"predict"`
	ExperimentalDesign ServiceStatus `json:"experimental_design"`
	ModelReports       ServiceStatus `json:"model_reports"`
}

// CreateDataView creates a data view and starts training. Training is
// asynchronous; use WaitUntilReady before predicting or designing.
func (c *Client) CreateDataView(ctx context.Context, cfg ViewConfig) (*DataView, error) {
	if err := validateViewConfig(cfg); err != nil {
		return nil, err
	}
	var view DataView
	if err := c.doJSON(ctx, http.MethodPost, "/api/data_views", cfg, &view); err != nil {
		return nil, err
	}
	c.logger.Info("data view created", log.ViewIDKey, view.ID, "name", view.Name)
	return &view, nil
}

func validateViewConfig(cfg ViewConfig) error {
	if cfg.Name == "" {
		return errors.NewValidationError("name", "view name required", "")
	}
	if len(cfg.DatasetIDs) == 0 {
		return errors.NewValidationError("dataset_ids", "at least one dataset required", "")
	}
	var inputs, outputs int
	for _, d := range cfg.Descriptors {
		switch d.Category {
		case CategoryInput:
			inputs++
		case CategoryOutput:
			outputs++
		default:
			return errors.NewValidationError("descriptors", "category must be Input or Output", d.Category)
		}
	}
	if inputs == 0 || outputs == 0 {
		return errors.NewValidationError("descriptors", "need at least one input and one output", fmt.Sprintf("%d inputs, %d outputs", inputs, outputs))
	}
	return nil
}

// GetDataView fetches a data view by ID.
func (c *Client) GetDataView(ctx context.Context, viewID string) (*DataView, error) {
	var view DataView
	if err := c.doJSON(ctx, http.MethodGet, "/api/data_views/"+viewID, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// TrainStatus reports the current readiness of a view's services.
func (c *Client) TrainStatus(ctx context.Context, viewID string) (*ViewStatus, error) {
	var status ViewStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/data_views/"+viewID+"/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Retrain rebuilds a view's models against the current dataset
// contents. Like CreateDataView, it returns before training completes.
func (c *Client) Retrain(ctx context.Context, viewID string) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/data_views/"+viewID+"/retrain", nil, nil); err != nil {
		return err
	}
	c.logger.Info("retrain submitted", log.ViewIDKey, viewID)
	return nil
}

// WaitUntilReady polls a view's training status until the predict and
// design services are both ready. It returns a JobTimeoutError when the
// poll deadline passes first.
func (c *Client) WaitUntilReady(ctx context.Context, viewID string) error {
	return c.pollJob(ctx, "train", viewID, func(ctx context.Context) (bool, string, error) {
		status, err := c.TrainStatus(ctx, viewID)
		if err != nil {
			return false, "", err
		}
		if status.Predict.Status == "Error" || status.ExperimentalDesign.Status == "Error" {
			return false, "", errors.NewNotTrainedError(viewID, "predict", "training failed: "+status.Predict.Reason)
		}
		ready := status.Predict.Ready && status.ExperimentalDesign.Ready
		return ready, status.Predict.Status, nil
	})
}
