package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:      0.0,
			tolerance: 1e-10,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25, // ((0.5)^2 + (0.5)^2 + (-0.5)^2 + (-0.5)^2) / 4
			tolerance: 1e-10,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MSE = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.5) > 1e-10 {
		t.Errorf("RMSE = %g, want 0.5", got)
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{10.0, 20.0, 30.0})
	yPred := mat.NewVecDense(3, []float64{12.0, 18.0, 33.0})

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	want := 7.0 / 3.0
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("MAE = %g, want %g", got, want)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(perfect-1.0) > 1e-10 {
		t.Errorf("perfect R2 = %g, want 1", perfect)
	}

	// Predicting the mean everywhere gives R2 = 0.
	mean := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})
	zero, err := R2Score(yTrue, mean)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(zero) > 1e-10 {
		t.Errorf("mean-prediction R2 = %g, want 0", zero)
	}

	// Constant yTrue is undefined.
	flat := mat.NewVecDense(3, []float64{2.0, 2.0, 2.0})
	if _, err := R2Score(flat, mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})); err == nil {
		t.Error("expected error for constant yTrue")
	}
}

func TestNDE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})

	// Perfect prediction: NDE 0.
	perfect, err := NDE(yTrue, yTrue)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(perfect) > 1e-10 {
		t.Errorf("perfect NDE = %g, want 0", perfect)
	}

	// Predicting the mean everywhere: RMSE equals stdev, NDE 1.
	mean := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})
	unit, err := NDE(yTrue, mean)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(unit-1.0) > 1e-10 {
		t.Errorf("mean-prediction NDE = %g, want 1", unit)
	}

	flat := mat.NewVecDense(3, []float64{5.0, 5.0, 5.0})
	if _, err := NDE(flat, flat); err == nil {
		t.Error("expected error for constant yTrue")
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{1, 2, 3})
	yPred := mat.NewDense(3, 1, []float64{1, 2, 4})

	got, err := MSEMatrix(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	want := 1.0 / 3.0
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("MSEMatrix = %g, want %g", got, want)
	}

	wide := mat.NewDense(3, 2, nil)
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("expected error for non column vector")
	}
}
