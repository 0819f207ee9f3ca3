// Package ingest turns tabular CSV data into PIF chemical systems. A
// Template assigns a role to each column; GuessTemplate derives one
// from a header row for the common "formula plus property columns"
// layout.
package ingest

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/citrinelab/citrine/formula"
	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
)

// Role is what a CSV column contributes to each record.
type Role string

const (
	// RoleFormula marks the chemical formula column. A template has
	// exactly one.
	RoleFormula Role = "formula"
	// RoleProperty columns become PIF properties.
	RoleProperty Role = "property"
	// RoleTag columns become record tags.
	RoleTag Role = "tag"
	// RoleIgnore columns are skipped.
	RoleIgnore Role = "ignore"
)

// Column maps one CSV column. Name and Units apply to property
// columns; when Name is empty the header is used.
type Column struct {
	Header string
	Role   Role
	Name   string
	Units  string
}

// Template describes how a CSV file maps onto chemical systems.
type Template struct {
	Columns []Column
	// Source, when set, is attached to every record.
	Source *pif.Source
	// Tags are added to every record.
	Tags []string
	// SkipBadRows drops rows with unparseable formulas or values
	// instead of failing the whole read.
	SkipBadRows bool
}

// Validate checks the template is usable.
func (t *Template) Validate() error {
	var formulas, properties int
	for _, col := range t.Columns {
		switch col.Role {
		case RoleFormula:
			formulas++
		case RoleProperty:
			properties++
		case RoleTag, RoleIgnore:
		default:
			return errors.NewValidationError("columns", "unknown column role", string(col.Role))
		}
	}
	if formulas != 1 {
		return errors.NewValidationError("columns", "template needs exactly one formula column", formulas)
	}
	if properties == 0 {
		return errors.NewValidationError("columns", "template needs at least one property column", 0)
	}
	return nil
}

// propertyName returns the property name a column contributes.
func (c Column) propertyName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Header
}

var formulaHeaders = map[string]bool{
	"formula":          true,
	"chemical formula": true,
	"chemicalformula":  true,
	"composition":      true,
	"material":         true,
}

// headerUnits matches headers of the form "Band gap (eV)".
var headerUnits = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

// GuessTemplate derives a template from a header row: a column whose
// name looks like a formula column takes RoleFormula, everything else
// becomes a property, with units split off a trailing parenthesis.
func GuessTemplate(header []string) Template {
	cols := make([]Column, len(header))
	seenFormula := false
	for i, h := range header {
		trimmed := strings.TrimSpace(h)
		if trimmed == "" {
			cols[i] = Column{Header: h, Role: RoleIgnore}
			continue
		}
		if !seenFormula && formulaHeaders[strings.ToLower(trimmed)] {
			cols[i] = Column{Header: trimmed, Role: RoleFormula}
			seenFormula = true
			continue
		}

		name, units := trimmed, ""
		if m := headerUnits.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
			name, units = m[1], m[2]
		}
		cols[i] = Column{Header: trimmed, Role: RoleProperty, Name: name, Units: units}
	}
	return Template{Columns: cols}
}

// ReadCSV parses CSV data into chemical systems using an explicit
// template. The first row is the header; it must have as many columns
// as the template.
func ReadCSV(r io.Reader, tmpl Template) ([]*pif.ChemicalSystem, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}
	if len(header) != len(tmpl.Columns) {
		return nil, errors.NewDimensionError("csv header", len(tmpl.Columns), len(header), 1)
	}

	var systems []*pif.ChemicalSystem
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.Wrapf(err, "csv row %d", row)
		}

		sys, err := tmpl.buildSystem(record)
		if err != nil {
			if tmpl.SkipBadRows {
				continue
			}
			return nil, errors.Wrapf(err, "csv row %d", row)
		}
		systems = append(systems, sys)
	}
	if len(systems) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv")
	}
	return systems, nil
}

// ReadCSVAuto reads CSV data, guessing the template from the header.
func ReadCSVAuto(r io.Reader) ([]*pif.ChemicalSystem, error) {
	return readCSVAuto(r, false)
}

// ReadCSVAutoLenient is ReadCSVAuto with bad rows dropped instead of
// failing the read.
func ReadCSVAutoLenient(r io.Reader) ([]*pif.ChemicalSystem, error) {
	return readCSVAuto(r, true)
}

func readCSVAuto(r io.Reader, skipBadRows bool) ([]*pif.ChemicalSystem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}

	hr := csv.NewReader(strings.NewReader(string(data)))
	header, err := hr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv")
	}

	tmpl := GuessTemplate(header)
	tmpl.SkipBadRows = skipBadRows
	return ReadCSV(strings.NewReader(string(data)), tmpl)
}

// buildSystem turns one CSV record into a chemical system.
func (t *Template) buildSystem(record []string) (*pif.ChemicalSystem, error) {
	if len(record) != len(t.Columns) {
		return nil, errors.NewDimensionError("csv row", len(t.Columns), len(record), 1)
	}

	var sys *pif.ChemicalSystem
	for i, col := range t.Columns {
		if col.Role != RoleFormula {
			continue
		}
		raw := strings.TrimSpace(record[i])
		if _, err := formula.Parse(raw); err != nil {
			return nil, err
		}
		sys = pif.NewChemicalSystem(raw)
	}

	for i, col := range t.Columns {
		cell := strings.TrimSpace(record[i])
		switch col.Role {
		case RoleProperty:
			if cell == "" {
				continue
			}
			sys.Properties = append(sys.Properties, pif.Property{
				Name:    col.propertyName(),
				Scalars: []pif.Scalar{pif.ParseScalar(cell)},
				Units:   col.Units,
			})
		case RoleTag:
			if cell != "" {
				sys.Tags = append(sys.Tags, cell)
			}
		}
	}

	sys.Source = t.Source
	sys.Tags = append(sys.Tags, t.Tags...)
	return sys, nil
}
