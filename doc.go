// Package citrine is a Go client and toolkit for the Citrination
// materials data platform: upload PIF datasets, build machine-learning
// data views, predict properties with uncertainties, run experimental
// design, and drive sequential-learning campaigns.
//
// # Quick Start
//
// Upload data, train a view, and predict:
//
//	c, err := client.New("https://citrination.com", os.Getenv("CITRINATION_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx := context.Background()
//
//	sys := pif.NewChemicalSystem("ZnO")
//	sys.AddProperty("Band gap", 3.3, "eV")
//
//	ds, _ := c.CreateDataset(ctx, "band gaps", "")
//	c.UploadSystems(ctx, ds.ID, []*pif.ChemicalSystem{sys})
//
//	view, _ := c.CreateDataView(ctx, client.ViewConfig{
//	    Name:       "band gap model",
//	    DatasetIDs: []int{ds.ID},
//	    Descriptors: []client.Descriptor{
//	        client.FormulaDescriptor("Formula"),
//	        client.RealDescriptor("Band gap", client.CategoryOutput),
//	    },
//	})
//	c.WaitUntilReady(ctx, view.ID)
//	preds, _ := c.Predict(ctx, view.ID, []client.Candidate{{"Formula": "GaN"}})
//
// # Packages
//
//   - client: REST client (datasets, data views, prediction, design, search)
//   - client/fake: in-process platform for tests and offline runs
//   - pif: the Physical Information File record format
//   - formula: chemical formula parsing and featurization
//   - ingest: CSV to PIF conversion
//   - learn: sequential-learning loop with MLI/MEI/Random acquisition
//   - plots: best-so-far and parity figures
//   - linear, metrics, preprocessing: the local modeling stack
//   - commands, cmd/citrine: the command line interface
//
// The cmd/citrine binary exposes the whole workflow, including an
// --offline mode backed by client/fake; see examples/ for runnable
// walkthroughs.
package citrine
