package pif

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestScalarUnmarshal(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantNumeric     bool
		wantNumber      float64
		wantUncertainty float64
		hasUncertainty  bool
		wantText        string
	}{
		{
			name:        "bare number",
			input:       `5.3`,
			wantNumeric: true,
			wantNumber:  5.3,
		},
		{
			name:        "numeric string",
			input:       `"2.41"`,
			wantNumeric: true,
			wantNumber:  2.41,
		},
		{
			name:            "string with uncertainty",
			input:           `"5.3+/-0.1"`,
			wantNumeric:     true,
			wantNumber:      5.3,
			wantUncertainty: 0.1,
			hasUncertainty:  true,
		},
		{
			name:            "string with plus-minus sign",
			input:           `"1.2 ± 0.3"`,
			wantNumeric:     true,
			wantNumber:      1.2,
			wantUncertainty: 0.3,
			hasUncertainty:  true,
		},
		{
			name:     "free text",
			input:    `"BCC"`,
			wantText: "BCC",
		},
		{
			name:            "object form",
			input:           `{"value": 7.5, "uncertainty": 0.2}`,
			wantNumeric:     true,
			wantNumber:      7.5,
			wantUncertainty: 0.2,
			hasUncertainty:  true,
		},
		{
			name:        "object with string value",
			input:       `{"value": "3.14"}`,
			wantNumeric: true,
			wantNumber:  3.14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scalar
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s.IsNumeric() != tt.wantNumeric {
				t.Errorf("IsNumeric = %v, want %v", s.IsNumeric(), tt.wantNumeric)
			}
			if tt.wantNumeric && math.Abs(s.Number()-tt.wantNumber) > 1e-12 {
				t.Errorf("Number = %g, want %g", s.Number(), tt.wantNumber)
			}
			u, ok := s.Uncertainty()
			if ok != tt.hasUncertainty {
				t.Errorf("has uncertainty = %v, want %v", ok, tt.hasUncertainty)
			}
			if tt.hasUncertainty && math.Abs(u-tt.wantUncertainty) > 1e-12 {
				t.Errorf("Uncertainty = %g, want %g", u, tt.wantUncertainty)
			}
			if tt.wantText != "" && s.String() != tt.wantText {
				t.Errorf("String = %q, want %q", s.String(), tt.wantText)
			}
		})
	}
}

func TestScalarMarshal(t *testing.T) {
	tests := []struct {
		name   string
		scalar Scalar
		want   string
	}{
		{
			name:   "plain number",
			scalar: NewScalar(4.2),
			want:   `4.2`,
		},
		{
			name:   "with uncertainty uses object form",
			scalar: NewScalarWithUncertainty(4.2, 0.5),
			want:   `{"value":4.2,"uncertainty":0.5}`,
		},
		{
			name:   "free text",
			scalar: NewStringScalar("FCC"),
			want:   `"FCC"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.scalar)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChemicalSystemRoundTrip(t *testing.T) {
	sys := NewChemicalSystem("MgO2")
	sys.Names = []string{"magnesium peroxide"}
	sys.AddProperty("Band gap", 4.5, "eV")
	sys.AddStringProperty("Crystallinity", "Single crystalline", "")
	sys.References = append(sys.References, Reference{DOI: "10.1000/xyz"})
	sys.Classifications = append(sys.Classifications, Classification{
		Name:  "Crystal system",
		Value: "Cubic",
	})
	sys.Preparation = append(sys.Preparation, ProcessStep{
		Name: "Solid state synthesis",
		Details: []Value{{
			Name:    "Temperature",
			Scalars: []Scalar{NewScalar(1100)},
			Units:   "K",
		}},
	})

	buf, err := json.Marshal(sys)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), `"category":"system.chemical"`) {
		t.Errorf("category missing from wire form: %s", buf)
	}

	var back ChemicalSystem
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatal(err)
	}
	if back.ChemicalFormula != "MgO2" {
		t.Errorf("formula = %q", back.ChemicalFormula)
	}
	prop, ok := back.Property("Band gap")
	if !ok {
		t.Fatal("Band gap property lost in round trip")
	}
	v, err := prop.NumericValue()
	if err != nil || v != 4.5 {
		t.Errorf("band gap = %g, err %v", v, err)
	}
	if len(back.Preparation) != 1 || back.Preparation[0].Name != "Solid state synthesis" {
		t.Errorf("preparation lost: %+v", back.Preparation)
	}
	if len(back.Classifications) != 1 || back.Classifications[0].Value != "Cubic" {
		t.Errorf("classifications lost: %+v", back.Classifications)
	}
}

func TestReadSystemsArray(t *testing.T) {
	input := `[
		{"category": "system.chemical", "chemicalFormula": "NaCl",
		 "properties": [{"name": "Melting point", "scalars": [1074], "units": "K"}]},
		{"category": "system.chemical", "chemicalFormula": "KCl"}
	]`

	systems, err := ReadSystems(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(systems) != 2 {
		t.Fatalf("got %d systems, want 2", len(systems))
	}
	if systems[0].ChemicalFormula != "NaCl" || systems[1].ChemicalFormula != "KCl" {
		t.Errorf("formulas = %q, %q", systems[0].ChemicalFormula, systems[1].ChemicalFormula)
	}
}

func TestReadSystemsConcatenated(t *testing.T) {
	input := `{"chemicalFormula": "Al2O3"}
{"chemicalFormula": "SiO2"}`

	systems, err := ReadSystems(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(systems) != 2 {
		t.Fatalf("got %d systems, want 2", len(systems))
	}
	if systems[0].ChemicalFormula != "Al2O3" {
		t.Errorf("first formula = %q", systems[0].ChemicalFormula)
	}
}

func TestReadSystemsEmpty(t *testing.T) {
	systems, err := ReadSystems(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(systems) != 0 {
		t.Errorf("got %d systems from empty input", len(systems))
	}
}

func TestWriteThenReadSystems(t *testing.T) {
	orig := []*ChemicalSystem{NewChemicalSystem("Fe2O3"), NewChemicalSystem("TiO2")}
	orig[0].AddProperty("Density", 5.24, "g/cm^3")

	var buf bytes.Buffer
	if err := WriteSystems(&buf, orig); err != nil {
		t.Fatal(err)
	}
	back, err := ReadSystems(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].ChemicalFormula != "Fe2O3" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestFlattenProperties(t *testing.T) {
	a := NewChemicalSystem("Al2O3")
	a.AddProperty("Band gap", 8.8, "eV")
	a.AddProperty("Density", 3.95, "g/cm^3")

	b := NewChemicalSystem("SiO2")
	b.AddProperty("Band gap", 9.0, "eV")
	b.AddProperty("Density", 2.65, "g/cm^3")

	// Missing density: must be skipped, not zero-filled.
	c := NewChemicalSystem("GaN")
	c.AddProperty("Band gap", 3.4, "eV")

	table, err := FlattenProperties([]*ChemicalSystem{a, b, c}, []string{"Band gap", "Density"})
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := table.Data.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", rows, cols)
	}
	if table.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", table.Skipped)
	}
	gaps, err := table.Column("Band gap")
	if err != nil {
		t.Fatal(err)
	}
	if gaps[0] != 8.8 || gaps[1] != 9.0 {
		t.Errorf("band gap column = %v", gaps)
	}
	if _, err := table.Column("Hardness"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestFlattenPropertiesNoCompleteRows(t *testing.T) {
	sys := NewChemicalSystem("ZnO")
	sys.AddStringProperty("Color", "white", "")

	_, err := FlattenProperties([]*ChemicalSystem{sys}, []string{"Band gap"})
	if err == nil {
		t.Error("expected error when no system has the property")
	}
}
