package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citrinelab/citrine/pif"
)

func TestGuessTemplate(t *testing.T) {
	tmpl := GuessTemplate([]string{"Formula", "Band gap (eV)", "Color", ""})
	require.Len(t, tmpl.Columns, 4)

	assert.Equal(t, RoleFormula, tmpl.Columns[0].Role)

	assert.Equal(t, RoleProperty, tmpl.Columns[1].Role)
	assert.Equal(t, "Band gap", tmpl.Columns[1].Name)
	assert.Equal(t, "eV", tmpl.Columns[1].Units)

	assert.Equal(t, RoleProperty, tmpl.Columns[2].Role)
	assert.Equal(t, "Color", tmpl.Columns[2].Name)
	assert.Empty(t, tmpl.Columns[2].Units)

	assert.Equal(t, RoleIgnore, tmpl.Columns[3].Role)

	require.NoError(t, tmpl.Validate())
}

func TestGuessTemplateFormulaAliases(t *testing.T) {
	for _, h := range []string{"formula", "Chemical Formula", "COMPOSITION", "Material"} {
		tmpl := GuessTemplate([]string{h, "Band gap"})
		assert.Equal(t, RoleFormula, tmpl.Columns[0].Role, h)
	}
}

func TestTemplateValidate(t *testing.T) {
	noFormula := Template{Columns: []Column{{Header: "Band gap", Role: RoleProperty}}}
	assert.Error(t, noFormula.Validate())

	noProperty := Template{Columns: []Column{{Header: "Formula", Role: RoleFormula}}}
	assert.Error(t, noProperty.Validate())

	badRole := Template{Columns: []Column{
		{Header: "Formula", Role: RoleFormula},
		{Header: "x", Role: Role("mystery")},
	}}
	assert.Error(t, badRole.Validate())
}

const sampleCSV = `Formula,Band gap (eV),Color
ZnO,3.3,white
GaN,3.4+/-0.1,yellow
Si,1.1,
`

func TestReadCSVAuto(t *testing.T) {
	systems, err := ReadCSVAuto(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, systems, 3)

	assert.Equal(t, "ZnO", systems[0].ChemicalFormula)
	assert.Equal(t, pif.CategoryChemical, systems[0].Category)

	prop, ok := systems[0].Property("Band gap")
	require.True(t, ok)
	assert.Equal(t, "eV", prop.Units)
	v, err := prop.NumericValue()
	require.NoError(t, err)
	assert.InDelta(t, 3.3, v, 1e-12)

	// uncertainty survives the string form
	prop, ok = systems[1].Property("Band gap")
	require.True(t, ok)
	u, hasU := prop.Scalars[0].Uncertainty()
	assert.True(t, hasU)
	assert.InDelta(t, 0.1, u, 1e-12)

	// empty cells contribute no property
	_, ok = systems[2].Property("Color")
	assert.False(t, ok)
}

func TestReadCSVWithTemplate(t *testing.T) {
	tmpl := Template{
		Columns: []Column{
			{Header: "Formula", Role: RoleFormula},
			{Header: "Band gap (eV)", Role: RoleProperty, Name: "Band gap", Units: "eV"},
			{Header: "Color", Role: RoleTag},
		},
		Source: &pif.Source{Producer: "toy lab"},
		Tags:   []string{"demo"},
	}

	systems, err := ReadCSV(strings.NewReader(sampleCSV), tmpl)
	require.NoError(t, err)
	require.Len(t, systems, 3)

	assert.Equal(t, "toy lab", systems[0].Source.Producer)
	assert.Contains(t, systems[0].Tags, "white")
	assert.Contains(t, systems[0].Tags, "demo")
}

func TestReadCSVBadFormula(t *testing.T) {
	csv := "Formula,Band gap\nnot_a_formula,1.0\nZnO,3.3\n"

	_, err := ReadCSVAuto(strings.NewReader(csv))
	assert.Error(t, err)

	tmpl := GuessTemplate([]string{"Formula", "Band gap"})
	tmpl.SkipBadRows = true
	systems, err := ReadCSV(strings.NewReader(csv), tmpl)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "ZnO", systems[0].ChemicalFormula)
}

func TestReadCSVShapeErrors(t *testing.T) {
	tmpl := GuessTemplate([]string{"Formula", "Band gap"})

	_, err := ReadCSV(strings.NewReader(""), tmpl)
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("Formula\nZnO\n"), tmpl)
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("Formula,Band gap\n"), tmpl)
	assert.Error(t, err) // header only, no data
}
