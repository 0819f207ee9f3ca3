package formula

import (
	"math"
	"testing"

	"github.com/citrinelab/citrine/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]float64
		wantErr bool
	}{
		{
			name:  "simple binary",
			input: "MgO2",
			want:  map[string]float64{"Mg": 1, "O": 2},
		},
		{
			name:  "one and two letter symbols",
			input: "CO2",
			want:  map[string]float64{"C": 1, "O": 2},
		},
		{
			name:  "two letter symbol wins",
			input: "Co2O3",
			want:  map[string]float64{"Co": 2, "O": 3},
		},
		{
			name:  "fractional subscripts",
			input: "Fe0.5Co0.5",
			want:  map[string]float64{"Fe": 0.5, "Co": 0.5},
		},
		{
			name:  "parenthesized group",
			input: "Ca3(PO4)2",
			want:  map[string]float64{"Ca": 3, "P": 2, "O": 8},
		},
		{
			name:  "nested groups",
			input: "Mg(Al(OH)4)2",
			want:  map[string]float64{"Mg": 1, "Al": 2, "O": 8, "H": 8},
		},
		{
			name:  "hydrate",
			input: "CuSO4·5H2O",
			want:  map[string]float64{"Cu": 1, "S": 1, "O": 9, "H": 10},
		},
		{
			name:  "repeated element accumulates",
			input: "CH3COOH",
			want:  map[string]float64{"C": 2, "H": 4, "O": 2},
		},
		{
			name:  "spaces tolerated",
			input: " Ga N ",
			want:  map[string]float64{"Ga": 1, "N": 1},
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "unknown symbol",
			input:   "Xx2O",
			wantErr: true,
		},
		{
			name:    "unbalanced open",
			input:   "Al2(SO4",
			wantErr: true,
		},
		{
			name:    "unbalanced close",
			input:   "Al2SO4)3",
			wantErr: true,
		},
		{
			name:    "stray character",
			input:   "Fe-Ni",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.input)
				}
				var parseErr *errors.ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("error is %T, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if len(comp.Elements()) != len(tt.want) {
				t.Errorf("elements = %v, want %d entries", comp.Elements(), len(tt.want))
			}
			for sym, n := range tt.want {
				if got := comp.Count(sym); math.Abs(got-n) > 1e-9 {
					t.Errorf("Count(%s) = %g, want %g", sym, got, n)
				}
			}
		})
	}
}

func TestAtomicFractions(t *testing.T) {
	comp := MustParse("Al2O3")
	fractions := comp.AtomicFractions()
	if math.Abs(fractions["Al"]-0.4) > 1e-12 {
		t.Errorf("Al fraction = %g, want 0.4", fractions["Al"])
	}
	if math.Abs(fractions["O"]-0.6) > 1e-12 {
		t.Errorf("O fraction = %g, want 0.6", fractions["O"])
	}
}

func TestWeight(t *testing.T) {
	// H2O: 2*1.008 + 15.999 = 18.015
	w := MustParse("H2O").Weight()
	if math.Abs(w-18.015) > 1e-3 {
		t.Errorf("Weight(H2O) = %g, want 18.015", w)
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Al2O3", "Al2O3"},
		{"O3Al2", "Al2O3"},
		{"Al4O6", "Al2O3"},
		{"NaCl", "ClNa"},
		{"Fe0.5Co0.5", "Co0.5Fe0.5"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.input).Normalized(); got != tt.want {
			t.Errorf("Normalized(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNormalizedAsDedupKey(t *testing.T) {
	a := MustParse("Al2O3").Normalized()
	b := MustParse("O3Al2").Normalized()
	if a != b {
		t.Errorf("equivalent formulas normalize differently: %q vs %q", a, b)
	}
}

func TestToPIF(t *testing.T) {
	entries := MustParse("GaN").ToPIF()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Element != "Ga" {
		t.Errorf("first element = %s, want Ga (input order)", entries[0].Element)
	}
	if entries[0].AtomicPercent == nil || math.Abs(entries[0].AtomicPercent.Number()-50) > 1e-9 {
		t.Errorf("Ga atomic percent = %+v, want 50", entries[0].AtomicPercent)
	}
}

func TestBasisAndFeaturize(t *testing.T) {
	comps := []*Composition{
		MustParse("Al2O3"),
		MustParse("MgO"),
	}

	basis := Basis(comps)
	want := []string{"Al", "Mg", "O"}
	if len(basis) != len(want) {
		t.Fatalf("basis = %v", basis)
	}
	for i := range want {
		if basis[i] != want[i] {
			t.Fatalf("basis = %v, want %v", basis, want)
		}
	}

	X, err := Featurize(comps, basis)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := X.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("dims = %dx%d", rows, cols)
	}
	if math.Abs(X.At(0, 0)-0.4) > 1e-12 { // Al in Al2O3
		t.Errorf("X[0,Al] = %g, want 0.4", X.At(0, 0))
	}
	if math.Abs(X.At(1, 1)-0.5) > 1e-12 { // Mg in MgO
		t.Errorf("X[1,Mg] = %g, want 0.5", X.At(1, 1))
	}
}

func TestFeaturizeOutsideBasis(t *testing.T) {
	_, err := Featurize([]*Composition{MustParse("TiO2")}, []string{"Al", "O"})
	if err == nil {
		t.Error("expected error for element outside basis")
	}
}

func TestLookupElement(t *testing.T) {
	fe, ok := LookupElement("Fe")
	if !ok || fe.Number != 26 {
		t.Errorf("LookupElement(Fe) = %+v, %v", fe, ok)
	}
	if IsElement("Zz") {
		t.Error("Zz should not be an element")
	}
}
