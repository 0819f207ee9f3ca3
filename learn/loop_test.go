package learn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citrinelab/citrine/client"
	"github.com/citrinelab/citrine/client/fake"
	"github.com/citrinelab/citrine/formula"
	"github.com/citrinelab/citrine/learn"
	"github.com/citrinelab/citrine/pif"
)

const bandGap = "Band gap"

// bandGapObjective is the hidden truth the loop rediscovers:
// band gap = 1 + 2 * x_Cu, maximized by pure copper.
func bandGapObjective() learn.Objective {
	return &learn.LinearObjective{Weights: map[string]float64{"Cu": 2}, Offset: 1}
}

func seedSystems(t *testing.T, formulas ...string) []*pif.ChemicalSystem {
	t.Helper()
	obj := bandGapObjective()
	systems := make([]*pif.ChemicalSystem, len(formulas))
	for i, f := range formulas {
		v, err := obj.Evaluate(formula.MustParse(f))
		require.NoError(t, err)
		sys := pif.NewChemicalSystem(f)
		sys.AddProperty(bandGap, v, "eV")
		systems[i] = sys
	}
	return systems
}

// setupCampaign uploads seeds, builds a trained view, and returns the
// IDs the loop needs.
func setupCampaign(t *testing.T, platform *fake.Platform) (*client.Client, int, string) {
	t.Helper()
	c, err := client.New(platform.URL(), "test-key",
		client.WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	ctx := context.Background()

	ds, err := c.CreateDataset(ctx, "band gaps", "")
	require.NoError(t, err)
	_, err = c.UploadSystems(ctx, ds.ID, seedSystems(t, "Zn", "CuZn3", "CuZn", "Cu3Zn"))
	require.NoError(t, err)

	view, err := c.CreateDataView(ctx, client.ViewConfig{
		Name:       "band gap view",
		DatasetIDs: []int{ds.ID},
		Descriptors: []client.Descriptor{
			client.FormulaDescriptor("Formula"),
			client.RealDescriptor(bandGap, client.CategoryOutput),
		},
	})
	require.NoError(t, err)
	return c, ds.ID, view.ID
}

func TestLoopPredictSelection(t *testing.T) {
	platform := fake.New()
	defer platform.Close()
	c, datasetID, viewID := setupCampaign(t, platform)

	loop, err := learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID:   datasetID,
		Target:      bandGap,
		Iterations:  3,
		Selection:   learn.SelectionPredict,
		Acquisition: learn.MLI{},
		Pool:        []string{"Cu", "Cu9Zn", "Cu4Zn", "CuZn9"},
	})
	require.NoError(t, err)

	history, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, history.Iterations, 3)

	// pure Cu is in the pool, so the loop finds the true optimum
	assert.InDelta(t, 3.0, history.Best, 1e-6)
	assert.Equal(t, "Cu", history.BestFormula)

	// best-so-far never regresses
	series := history.BestSeries()
	for i := 1; i < len(series); i++ {
		assert.GreaterOrEqual(t, series[i], series[i-1])
	}

	// no candidate is measured twice, seeds included
	seen := map[string]bool{"Zn": true, "CuZn3": true, "CuZn": true, "Cu3Zn": true}
	for _, m := range history.Measurements() {
		key := formula.MustParse(m.Formula).Normalized()
		assert.False(t, seen[key], "re-measured %s", m.Formula)
		seen[key] = true
	}

	// measurements were appended to the dataset
	assert.Equal(t, 4+3, platform.SystemCount(datasetID))
}

func TestLoopDesignSelection(t *testing.T) {
	platform := fake.New(
		fake.WithDesignPool([]string{"Cu", "Cu9Zn", "Cu4Zn", "CuZn9"}),
	)
	defer platform.Close()
	c, datasetID, viewID := setupCampaign(t, platform)

	loop, err := learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID:  datasetID,
		Target:     bandGap,
		Iterations: 2,
	})
	require.NoError(t, err)

	history, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, history.Iterations, 2)

	measured := history.Measurements()
	require.Len(t, measured, 2)
	assert.NotEqual(t, measured[0].Formula, measured[1].Formula)
	assert.Greater(t, history.Best, 2.5) // seeds topped out at Cu3Zn
}

func TestLoopEarlyStop(t *testing.T) {
	platform := fake.New()
	defer platform.Close()
	c, datasetID, viewID := setupCampaign(t, platform)

	target := 2.75
	loop, err := learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID:  datasetID,
		Target:     bandGap,
		Iterations: 10,
		Selection:  learn.SelectionPredict,
		Pool:       []string{"Cu", "Cu9Zn", "Cu4Zn", "CuZn9"},
		EarlyStop:  &target,
	})
	require.NoError(t, err)

	history, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, len(history.Iterations), 10)
	assert.GreaterOrEqual(t, history.Best, target)
}

func TestLoopPoolExhausted(t *testing.T) {
	platform := fake.New()
	defer platform.Close()
	c, datasetID, viewID := setupCampaign(t, platform)

	loop, err := learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID:  datasetID,
		Target:     bandGap,
		Iterations: 5,
		Selection:  learn.SelectionPredict,
		Pool:       []string{"Cu9Zn"},
	})
	require.NoError(t, err)

	history, err := loop.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "candidate pool exhausted")
	// the single candidate was still measured before the pool ran dry
	require.Len(t, history.Iterations, 1)
}

func TestLoopConfigValidation(t *testing.T) {
	platform := fake.New()
	defer platform.Close()
	c, datasetID, viewID := setupCampaign(t, platform)

	_, err := learn.New(c, viewID, bandGapObjective(), learn.Config{DatasetID: datasetID})
	assert.Error(t, err) // no target

	_, err = learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID: datasetID,
		Target:    bandGap,
		Goal:      "Sideways",
	})
	assert.Error(t, err)

	_, err = learn.New(c, viewID, bandGapObjective(), learn.Config{
		DatasetID: datasetID,
		Target:    bandGap,
		Selection: learn.SelectionPredict,
	})
	assert.Error(t, err) // predict selection without a pool

	_, err = learn.New(c, "", bandGapObjective(), learn.Config{Target: bandGap})
	assert.Error(t, err)

	_, err = learn.New(c, viewID, nil, learn.Config{Target: bandGap})
	assert.Error(t, err)
}
