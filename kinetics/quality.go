package kinetics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FitQuality summarizes how well the fitted curve reproduces the window.
// All values are computed on the offset-adjusted axes.
type FitQuality struct {
	RMSE     float64 `json:"rmse" yaml:"rmse"`
	RSquared float64 `json:"r_squared" yaml:"r_squared"`
	PearsonR float64 `json:"pearson_r" yaml:"pearson_r"`
	Quality  string  `json:"quality" yaml:"quality"` // "excellent", "good", "fair", "poor"
	Count    int     `json:"count" yaml:"count"`
}

// ComputeFitQuality compares observed rates with model predictions.
func ComputeFitQuality(observed, predicted []float64) (*FitQuality, error) {
	if len(observed) == 0 || len(predicted) == 0 {
		return nil, fmt.Errorf("empty rate vectors")
	}
	if len(observed) != len(predicted) {
		return nil, fmt.Errorf("mismatched vector lengths: observed=%d predicted=%d", len(observed), len(predicted))
	}

	q := &FitQuality{Count: len(observed)}
	q.RMSE = floats.Distance(observed, predicted, 2) / math.Sqrt(float64(len(observed)))

	// R² is undefined for a flat series; treat a perfect reproduction as 1.
	if v := stat.Variance(observed, nil); v == 0 || math.IsNaN(v) {
		if q.RMSE == 0 {
			q.RSquared = 1
		}
	} else {
		q.RSquared = stat.RSquaredFrom(predicted, observed, nil)
	}

	// Pearson r (requires N >= 3)
	if len(observed) >= 3 {
		if r := stat.Correlation(observed, predicted, nil); !math.IsNaN(r) {
			q.PearsonR = r
		}
	}

	q.Quality = qualityRating(q.RSquared)
	return q, nil
}

func qualityRating(rSquared float64) string {
	if rSquared >= 0.99 {
		return "excellent"
	}
	if rSquared >= 0.95 {
		return "good"
	}
	if rSquared >= 0.85 {
		return "fair"
	}
	return "poor"
}
