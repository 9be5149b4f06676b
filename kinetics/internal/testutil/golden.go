// Package testutil provides shared test infrastructure for the kinetics packages.
// It holds the golden fit dataset types and assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_fits.json.
type GoldenDataset struct {
	Tests []GoldenFitCase `json:"tests"`
}

// GoldenFitCase is a single trial with its expected fit.
type GoldenFitCase struct {
	Name           string    `json:"name"`
	Trial          string    `json:"trial"`
	Concentrations []float64 `json:"concentrations"`
	Rates          []float64 `json:"rates"`
	CutoffRate     float64   `json:"cutoff_rate"`
	Expected       GoldenFit `json:"expected"`
}

// GoldenFit represents the expected FitResult fields of a golden case.
type GoldenFit struct {
	Vmax       float64  `json:"vmax"`
	Km         float64  `json:"km"`
	OffsetRate float64  `json:"offset_rate"`
	OffsetConc float64  `json:"offset_conc"`
	MaxTime    int      `json:"max_time"`
	EqConc     *float64 `json:"eq_conc"` // null when no zero crossing is expected
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: kinetics/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_fits.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
