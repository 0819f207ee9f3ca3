package fake

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/citrinelab/citrine/formula"
	"github.com/citrinelab/citrine/linear"
	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/preprocessing"
)

type descriptor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

type viewConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DatasetIDs  []int        `json:"dataset_ids"`
	Descriptors []descriptor `json:"descriptors"`
}

// viewModel is one trained view: a linear model per output descriptor
// over element fractions plus any real-valued inputs.
type viewModel struct {
	formulaDescriptor string
	realInputs        []string
	outputs           []string

	basis    []string
	formulas []string
	scaler   *preprocessing.StandardScaler
	models   map[string]*linear.LinearRegression
	// best observed value per output, used to score design candidates
	observedBest map[string]float64
}

func splitDescriptors(cfg viewConfig) (formulaDesc string, realInputs, outputs []string, err error) {
	for _, d := range cfg.Descriptors {
		switch {
		case d.Category == "Input" && d.Type == "Inorganic":
			if formulaDesc != "" {
				return "", nil, nil, fmt.Errorf("multiple Inorganic inputs")
			}
			formulaDesc = d.Name
		case d.Category == "Input":
			realInputs = append(realInputs, d.Name)
		case d.Category == "Output":
			outputs = append(outputs, d.Name)
		}
	}
	if formulaDesc == "" {
		return "", nil, nil, fmt.Errorf("no Inorganic input descriptor")
	}
	if len(outputs) == 0 {
		return "", nil, nil, fmt.Errorf("no output descriptor")
	}
	return formulaDesc, realInputs, outputs, nil
}

// trainView fits one linear model per output over the given systems.
func trainView(cfg viewConfig, systems []*pif.ChemicalSystem) (*viewModel, error) {
	formulaDesc, realInputs, outputs, err := splitDescriptors(cfg)
	if err != nil {
		return nil, err
	}

	props := append(append([]string{}, realInputs...), outputs...)
	table, err := pif.FlattenProperties(systems, props)
	if err != nil {
		return nil, fmt.Errorf("flattening training data: %w", err)
	}
	n := len(table.Formulas)

	comps := make([]*formula.Composition, n)
	for i, f := range table.Formulas {
		comp, err := formula.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		comps[i] = comp
	}
	basis := formula.Basis(comps)
	if len(basis) < 2 {
		return nil, fmt.Errorf("training data spans %d element, need at least 2", len(basis))
	}
	fractions, err := formula.Featurize(comps, basis)
	if err != nil {
		return nil, err
	}

	// Element fractions sum to one, so the last element's column is
	// dropped to keep the design matrix full rank alongside the
	// intercept.
	nBasisCols := len(basis) - 1
	cols := nBasisCols + len(realInputs)
	if n < cols+2 {
		return nil, fmt.Errorf("only %d complete records for %d features", n, cols)
	}
	x := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < nBasisCols; j++ {
			x.Set(i, j, fractions.At(i, j))
		}
	}
	for j, name := range realInputs {
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			x.Set(i, nBasisCols+j, col[i])
		}
	}

	// standardize features so fraction and real-input columns fit on
	// comparable scales
	scaler := preprocessing.NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(x)
	if err != nil {
		return nil, fmt.Errorf("scaling training data: %w", err)
	}

	vm := &viewModel{
		formulaDescriptor: formulaDesc,
		realInputs:        realInputs,
		outputs:           outputs,
		basis:             basis,
		formulas:          table.Formulas,
		scaler:            scaler,
		models:            make(map[string]*linear.LinearRegression, len(outputs)),
		observedBest:      make(map[string]float64, len(outputs)),
	}
	for _, out := range outputs {
		col, err := table.Column(out)
		if err != nil {
			return nil, err
		}
		y := mat.NewVecDense(n, col)
		model := linear.NewLinearRegression()
		if err := model.Fit(scaled, y); err != nil {
			return nil, fmt.Errorf("fitting %q: %w", out, err)
		}
		vm.models[out] = model
		vm.observedBest[out] = mat.Max(y)
	}
	return vm, nil
}

// featurizeCandidate builds the model input row for one candidate.
func (vm *viewModel) featurizeCandidate(cand map[string]any) (*mat.Dense, error) {
	raw, ok := cand[vm.formulaDescriptor]
	if !ok {
		return nil, fmt.Errorf("candidate missing descriptor %q", vm.formulaDescriptor)
	}
	formulaStr, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("descriptor %q must be a formula string", vm.formulaDescriptor)
	}
	comp, err := formula.Parse(formulaStr)
	if err != nil {
		return nil, err
	}
	fractions, err := formula.Featurize([]*formula.Composition{comp}, vm.basis)
	if err != nil {
		return nil, err
	}

	nBasisCols := len(vm.basis) - 1
	row := mat.NewDense(1, nBasisCols+len(vm.realInputs), nil)
	for j := 0; j < nBasisCols; j++ {
		row.Set(0, j, fractions.At(0, j))
	}
	for j, name := range vm.realInputs {
		v, ok := cand[name]
		if !ok {
			return nil, fmt.Errorf("candidate missing descriptor %q", name)
		}
		num, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("descriptor %q must be numeric", name)
		}
		row.Set(0, nBasisCols+j, num)
	}
	return row, nil
}

// predictCandidate returns value and loss per output descriptor.
func (vm *viewModel) predictCandidate(cand map[string]any) (map[string]map[string]float64, error) {
	row, err := vm.featurizeCandidate(cand)
	if err != nil {
		return nil, err
	}
	scaled, err := vm.scaler.Transform(row)
	if err != nil {
		return nil, err
	}

	values := make(map[string]map[string]float64, len(vm.outputs))
	for _, out := range vm.outputs {
		pred, sigma, err := vm.models[out].PredictWithUncertainty(scaled)
		if err != nil {
			return nil, err
		}
		values[out] = map[string]float64{
			"value": pred.AtVec(0),
			"loss":  sigma.AtVec(0),
		}
	}
	return values, nil
}
