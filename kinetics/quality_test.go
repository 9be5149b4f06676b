package kinetics

import (
	"math"
	"testing"
)

func TestComputeFitQuality_PerfectMatch(t *testing.T) {
	observed := []float64{0, 0.01, 0.03, 0.05}

	q, err := ComputeFitQuality(observed, observed)
	if err != nil {
		t.Fatal(err)
	}
	if q.RMSE != 0 {
		t.Errorf("RMSE = %f, want 0", q.RMSE)
	}
	if q.RSquared != 1.0 {
		t.Errorf("RSquared = %f, want 1", q.RSquared)
	}
	if math.Abs(q.PearsonR-1.0) > 1e-12 {
		t.Errorf("PearsonR = %f, want 1", q.PearsonR)
	}
	if q.Quality != "excellent" {
		t.Errorf("quality = %q, want excellent", q.Quality)
	}
}

func TestComputeFitQuality_KnownError_CorrectRMSE(t *testing.T) {
	observed := []float64{1, 2, 3, 4}
	predicted := []float64{1.5, 2.5, 2.5, 3.5}

	q, err := ComputeFitQuality(observed, predicted)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(q.RMSE-0.5) > 1e-12 {
		t.Errorf("RMSE = %f, want 0.5", q.RMSE)
	}
	// SSres = 1, SStot = 5
	if math.Abs(q.RSquared-0.8) > 1e-12 {
		t.Errorf("RSquared = %f, want 0.8", q.RSquared)
	}
	if q.Quality != "poor" {
		t.Errorf("quality = %q, want poor", q.Quality)
	}
}

func TestComputeFitQuality_FlatObserved_NoNaN(t *testing.T) {
	q, err := ComputeFitQuality([]float64{0, 0, 0}, []float64{0, 0.1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(q.RSquared) || math.IsNaN(q.PearsonR) {
		t.Errorf("expected finite statistics, got %+v", q)
	}
}

func TestComputeFitQuality_EmptyOrMismatched_ReturnsError(t *testing.T) {
	if _, err := ComputeFitQuality(nil, nil); err == nil {
		t.Fatal("expected error for empty slices")
	}
	if _, err := ComputeFitQuality([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestQualityRating_Thresholds(t *testing.T) {
	tests := []struct {
		r2   float64
		want string
	}{
		{0.995, "excellent"},
		{0.96, "good"},
		{0.9, "fair"},
		{0.5, "poor"},
	}
	for _, tt := range tests {
		if got := qualityRating(tt.r2); got != tt.want {
			t.Errorf("qualityRating(%v) = %q, want %q", tt.r2, got, tt.want)
		}
	}
}
