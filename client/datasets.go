package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

// uploadChunkSize bounds how many systems go into one upload request.
const uploadChunkSize = 250

// Dataset describes a dataset on the platform.
type Dataset struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     int    `json:"version"`
	SystemCount int    `json:"system_count"`
	Public      bool   `json:"public"`
}

// DatasetFile is one stored file within a dataset version.
type DatasetFile struct {
	Name    string `json:"filename"`
	URL     string `json:"url"`
	Version int    `json:"version"`
}

// UploadResult reports what an upload changed.
type UploadResult struct {
	DatasetID int `json:"dataset_id"`
	Version   int `json:"version"`
	Accepted  int `json:"accepted"`
}

type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public,omitempty"`
}

// CreateDataset creates a new, empty dataset.
func (c *Client) CreateDataset(ctx context.Context, name, description string) (*Dataset, error) {
	if name == "" {
		return nil, errors.NewValidationError("name", "dataset name required", "")
	}
	var ds Dataset
	err := c.doJSON(ctx, http.MethodPost, "/api/datasets", createDatasetRequest{
		Name:        name,
		Description: description,
	}, &ds)
	if err != nil {
		return nil, err
	}
	c.logger.Info("dataset created", log.DatasetIDKey, ds.ID, "name", ds.Name)
	return &ds, nil
}

// UpdateDataset changes a dataset's name or description.
func (c *Client) UpdateDataset(ctx context.Context, id int, name, description string) (*Dataset, error) {
	var ds Dataset
	path := fmt.Sprintf("/api/datasets/%d", id)
	err := c.doJSON(ctx, http.MethodPost, path, createDatasetRequest{
		Name:        name,
		Description: description,
	}, &ds)
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// GetDataset fetches dataset metadata.
func (c *Client) GetDataset(ctx context.Context, id int) (*Dataset, error) {
	var ds Dataset
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/datasets/%d", id), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDatasetFiles lists the files stored in a dataset.
func (c *Client) ListDatasetFiles(ctx context.Context, id int) ([]DatasetFile, error) {
	var out struct {
		Files []DatasetFile `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/datasets/%d/files", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

type uploadRequest struct {
	Systems []*pif.ChemicalSystem `json:"systems"`
}

// UploadSystems uploads PIF records into a dataset, chunking large
// uploads into multiple requests. It returns the result of the final
// chunk, with Accepted summed across chunks.
func (c *Client) UploadSystems(ctx context.Context, datasetID int, systems []*pif.ChemicalSystem) (*UploadResult, error) {
	if len(systems) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "upload")
	}

	path := fmt.Sprintf("/api/datasets/%d/pif/json", datasetID)
	total := &UploadResult{DatasetID: datasetID}
	for chunk := 0; chunk*uploadChunkSize < len(systems); chunk++ {
		lo := chunk * uploadChunkSize
		hi := min(lo+uploadChunkSize, len(systems))

		var res UploadResult
		if err := c.doJSON(ctx, http.MethodPost, path, uploadRequest{Systems: systems[lo:hi]}, &res); err != nil {
			return nil, errors.Wrapf(err, "uploading systems %d..%d", lo, hi)
		}
		total.Version = res.Version
		total.Accepted += res.Accepted

		c.logger.Debug("chunk uploaded",
			log.DatasetIDKey, datasetID,
			log.ChunkKey, chunk,
			log.SamplesKey, hi-lo,
			log.DatasetVersionKey, res.Version,
		)
	}

	c.logger.Info("systems uploaded",
		log.DatasetIDKey, datasetID,
		log.SamplesKey, total.Accepted,
		log.DatasetVersionKey, total.Version,
	)
	return total, nil
}
