package kinetics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrp-kinetics/kinfit/kinetics/internal/testutil"
)

func TestFitTrial_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := DefaultFitConfig()
			cfg.CutoffRate = tc.CutoffRate
			trial := Trial{ID: tc.Trial, Concentrations: tc.Concentrations, Rates: tc.Rates}

			res, err := FitTrial(trial, cfg)
			require.NoError(t, err)

			assert.Equal(t, tc.Trial, res.Trial)
			assert.Equal(t, tc.Expected.MaxTime, res.MaxTime)
			testutil.AssertFloat64Equal(t, "vmax", tc.Expected.Vmax, res.Vmax, 1e-3)
			testutil.AssertFloat64Equal(t, "km", tc.Expected.Km, res.Km, 1e-3)
			testutil.AssertFloat64Equal(t, "offset_rate", tc.Expected.OffsetRate, res.OffsetRate, 1e-12)
			testutil.AssertFloat64Equal(t, "offset_conc", tc.Expected.OffsetConc, res.OffsetConc, 1e-12)
			if tc.Expected.EqConc == nil {
				assert.Nil(t, res.EqConc)
			} else {
				require.NotNil(t, res.EqConc)
				assert.InDelta(t, *tc.Expected.EqConc, *res.EqConc, 1e-9)
			}
		})
	}
}

func TestFitTrial_AllRatesAboveCutoff_WindowIsWholeSeries(t *testing.T) {
	// GIVEN a series that never drops to the cutoff
	concs := []float64{30, 20, 12, 7, 4, 2}
	rates := offsetCurve(concs, Params{Vmax: 0.2, Km: 5}, Offsets{Rate: 0.03, Conc: 2})

	// WHEN fitted
	res, err := FitTrial(Trial{ID: "t", Concentrations: concs, Rates: rates}, DefaultFitConfig())

	// THEN max_time covers every sample
	require.NoError(t, err)
	assert.Equal(t, len(rates)-1, res.MaxTime)
}

func TestFitTrial_FirstRateAtCutoff_EmptyWindowError(t *testing.T) {
	trial := Trial{ID: "0.5:1 phe 2", Concentrations: []float64{10, 9}, Rates: []float64{0.02, 0.5}}

	_, err := FitTrial(trial, DefaultFitConfig())

	var empty *EmptyWindowError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, "empty-window", ErrorKind(err))
}

func TestFitTrials_PartialFailure_IsolatedPerTrial(t *testing.T) {
	// GIVEN one good trial between two bad ones
	trials := []Trial{
		{ID: "empty", Concentrations: []float64{5, 4}, Rates: []float64{0.01, 0.01}},
		{ID: "good", Concentrations: []float64{50, 30, 10, 5}, Rates: []float64{0.10, 0.08, 0.05, 0.01}},
		{ID: "single", Concentrations: []float64{5, 4}, Rates: []float64{0.3, 0.01}},
	}

	// WHEN fitted as a batch
	report := FitTrials(trials, DefaultFitConfig())

	// THEN every trial has an outcome in input order and only the good one succeeded
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)

	assert.Equal(t, "empty", report.Outcomes[0].Trial)
	assert.True(t, report.Outcomes[0].Failed())
	assert.Equal(t, "empty-window", report.Outcomes[0].Status())

	assert.False(t, report.Outcomes[1].Failed())
	assert.Equal(t, "ok", report.Outcomes[1].Status())
	assert.Empty(t, report.Outcomes[1].Reason())

	assert.Equal(t, "degenerate-fit", report.Outcomes[2].Status())
	assert.NotContains(t, report.Outcomes[2].Reason(), "trial \"single\"", "reason is the bare cause")

	var te *TrialError
	require.True(t, errors.As(report.Outcomes[2].Err, &te))
	assert.Equal(t, "single", te.Trial)

	results := report.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Trial)
}

func TestFitTrials_OrderInsensitive(t *testing.T) {
	a := Trial{ID: "a", Concentrations: []float64{50, 30, 10}, Rates: []float64{0.10, 0.08, 0.05}}
	concs := []float64{30, 20, 12, 7, 4, 2}
	b := Trial{ID: "b", Concentrations: concs, Rates: offsetCurve(concs, Params{Vmax: 0.2, Km: 5}, Offsets{Rate: 0.03, Conc: 2})}

	forward := FitTrials([]Trial{a, b}, DefaultFitConfig()).Results()
	reverse := FitTrials([]Trial{b, a}, DefaultFitConfig()).Results()

	require.Len(t, forward, 2)
	require.Len(t, reverse, 2)
	assert.Equal(t, forward[0].Vmax, reverse[1].Vmax)
	assert.Equal(t, forward[1].Km, reverse[0].Km)
}

func TestBatchReport_RecordExternalFailure(t *testing.T) {
	report := &BatchReport{}

	report.Record("missing", nil, errors.New("no rate column"))

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "error", report.Outcomes[0].Status())
	assert.Equal(t, "no rate column", report.Outcomes[0].Reason())
}
