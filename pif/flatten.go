package pif

import (
	"gonum.org/v1/gonum/mat"

	"github.com/citrinelab/citrine/pkg/errors"
)

// Table is a column-oriented view of one numeric property set across many
// systems, ready for matrix work.
type Table struct {
	// Formulas holds the chemical formula of each retained row.
	Formulas []string
	// Columns names the property behind each data column.
	Columns []string
	// Data is rows x columns; row i corresponds to Formulas[i].
	Data *mat.Dense
	// Skipped counts systems dropped because a requested property was
	// missing, empty, or non-numeric.
	Skipped int
}

// FlattenProperties extracts the named numeric properties from systems into
// a Table. Systems missing any requested property are skipped rather than
// zero-filled, so the returned rows are complete cases only.
func FlattenProperties(systems []*ChemicalSystem, names []string) (*Table, error) {
	if len(names) == 0 {
		return nil, errors.NewValidationError("names", "at least one property name required", names)
	}
	if len(systems) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FlattenProperties")
	}

	var formulas []string
	var rows [][]float64
	skipped := 0

	for _, sys := range systems {
		row := make([]float64, len(names))
		complete := true
		for j, name := range names {
			prop, ok := sys.Property(name)
			if !ok {
				complete = false
				break
			}
			v, err := prop.NumericValue()
			if err != nil {
				complete = false
				break
			}
			row[j] = v
		}
		if !complete {
			skipped++
			continue
		}
		formulas = append(formulas, sys.ChemicalFormula)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.Newf("FlattenProperties: no system carries all of %v", names)
	}

	data := mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		data.SetRow(i, row)
	}

	return &Table{
		Formulas: formulas,
		Columns:  append([]string(nil), names...),
		Data:     data,
		Skipped:  skipped,
	}, nil
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	for j, col := range t.Columns {
		if col == name {
			rows, _ := t.Data.Dims()
			out := make([]float64, rows)
			mat.Col(out, j, t.Data)
			return out, nil
		}
	}
	return nil, errors.NewValueError("Table.Column", "no column named "+name)
}
