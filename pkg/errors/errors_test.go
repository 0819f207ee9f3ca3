package errors

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError("POST", "/api/datasets", 403, "Forbidden", "invalid API key", "req-123")

	var apiErr *APIError
	if !As(err, &apiErr) {
		t.Fatalf("expected *APIError in chain, got %T", err)
	}
	if apiErr.StatusCode != 403 {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	for _, want := range []string{"POST", "/api/datasets", "403", "invalid API key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error message %q missing %q", err.Error(), want)
		}
	}
}

func TestAPIErrorWithoutMessage(t *testing.T) {
	err := NewAPIError("GET", "/api/views/1", 502, "", "", "")
	if !strings.Contains(err.Error(), "unexpected status 502") {
		t.Errorf("error message %q missing status fallback", err.Error())
	}
}

func TestNotTrainedError(t *testing.T) {
	err := NewNotTrainedError("view-7", "predict", "training_in_progress")

	var ntErr *NotTrainedError
	if !As(err, &ntErr) {
		t.Fatalf("expected *NotTrainedError in chain, got %T", err)
	}
	if ntErr.ViewID != "view-7" || ntErr.Service != "predict" {
		t.Errorf("unexpected fields: %+v", ntErr)
	}
}

func TestJobTimeoutError(t *testing.T) {
	err := NewJobTimeoutError("design run", "run-42", "running", 90*time.Second)
	if !strings.Contains(err.Error(), "run-42") || !strings.Contains(err.Error(), "1m30s") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		position int
		reason   string
		want     string
	}{
		{
			name:     "with position",
			input:    "Al2O3(",
			position: 5,
			reason:   "unbalanced parenthesis",
			want:     "offset 5",
		},
		{
			name:     "without position",
			input:    "",
			position: -1,
			reason:   "empty formula",
			want:     "empty formula",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParseError(tt.input, tt.position, tt.reason)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error message %q missing %q", err.Error(), tt.want)
			}
		})
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Featurize", 4, 3, 1)

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatalf("expected *DimensionError in chain, got %T", err)
	}
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("axis 1 should report features: %q", err.Error())
	}
}

func TestWarningHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer SetWarningHandler(nil)

	w := NewRateLimitWarning("POST", "/api/predict", 2*time.Second, 1)
	Warn(w)

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	if !strings.Contains(captured[0].Error(), "rate limited") {
		t.Errorf("unexpected warning: %q", captured[0].Error())
	}
}

func TestErrPoolExhaustedWrapping(t *testing.T) {
	wrapped := Wrap(ErrPoolExhausted, "iteration 5")
	if !Is(wrapped, ErrPoolExhausted) {
		t.Error("wrapped error should match ErrPoolExhausted")
	}
}

func TestSafeExecuteRecoversPanic(t *testing.T) {
	err := SafeExecute("objective evaluation", func() error {
		panic("bad candidate")
	})
	if err == nil {
		t.Fatal("expected error from panic")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if panicErr.Operation != "objective evaluation" {
		t.Errorf("Operation = %q", panicErr.Operation)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("acquisition", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckScalar("acquisition", math.NaN(), 2); err == nil {
		t.Error("expected error for NaN")
	}
}
