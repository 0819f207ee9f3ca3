package client

import (
	"context"
	"net/http"

	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

// searchPageSize is how many hits one search request returns at most.
const searchPageSize = 100

// Query describes a PIF search. Zero-valued fields are unconstrained.
type Query struct {
	DatasetID    int    `json:"dataset_id,omitempty"`
	Formula      string `json:"formula,omitempty"`
	PropertyName string `json:"property_name,omitempty"`
	From         int    `json:"from"`
	Size         int    `json:"size"`
}

// SearchHit is one matching record.
type SearchHit struct {
	ID     string              `json:"id"`
	System *pif.ChemicalSystem `json:"system"`
}

// SearchResult is one page of hits plus the total match count.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// SearchPIF runs one page of a PIF search.
func (c *Client) SearchPIF(ctx context.Context, q Query) (*SearchResult, error) {
	if q.Size <= 0 {
		q.Size = searchPageSize
	}
	var result SearchResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/search/pif_search", q, &result); err != nil {
		return nil, err
	}
	c.logger.Debug("search page",
		log.DatasetIDKey, q.DatasetID,
		"from", q.From,
		"hits", len(result.Hits),
		"total", result.Total,
	)
	return &result, nil
}

// SearchAll pages through every hit for a query. The query's From and
// Size are managed by the pager.
func (c *Client) SearchAll(ctx context.Context, q Query) ([]SearchHit, error) {
	q.From = 0
	q.Size = searchPageSize

	var hits []SearchHit
	for {
		page, err := c.SearchPIF(ctx, q)
		if err != nil {
			return nil, errors.Wrapf(err, "search page from %d", q.From)
		}
		hits = append(hits, page.Hits...)
		if len(hits) >= page.Total || len(page.Hits) == 0 {
			return hits, nil
		}
		q.From += len(page.Hits)
	}
}

// SearchSystems is SearchAll, unwrapped to the PIF records.
func (c *Client) SearchSystems(ctx context.Context, q Query) ([]*pif.ChemicalSystem, error) {
	hits, err := c.SearchAll(ctx, q)
	if err != nil {
		return nil, err
	}
	systems := make([]*pif.ChemicalSystem, 0, len(hits))
	for _, h := range hits {
		if h.System != nil {
			systems = append(systems, h.System)
		}
	}
	return systems, nil
}
