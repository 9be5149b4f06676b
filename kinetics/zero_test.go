package kinetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateZeroRate_CrossingBelowOffsetConcentration(t *testing.T) {
	// GIVEN a curve that turns negative just below its offset concentration
	p := Params{Vmax: 0.1, Km: 1}
	off := Offsets{Rate: 0.01, Conc: 50}

	// WHEN scanned from 100 downwards
	c, found := LocateZeroRate(p, off, DefaultCutoffRate)

	// THEN the first non-positive probe is 49.9
	require.True(t, found)
	assert.Equal(t, 49.9, c)
}

func TestLocateZeroRate_FirstCrossingFromAbove(t *testing.T) {
	// GIVEN curves that cross zero somewhere in the scan range
	cases := []struct {
		p   Params
		off Offsets
	}{
		{Params{Vmax: 0.1, Km: 1}, Offsets{Rate: 0.01, Conc: 50}},
		{Params{Vmax: 0.2, Km: 5}, Offsets{Rate: 0.03, Conc: 2}},
		{Params{Vmax: 0.5, Km: 10}, Offsets{Rate: -0.02, Conc: 0}},
	}
	for _, tc := range cases {
		c, found := LocateZeroRate(tc.p, tc.off, 0)
		require.True(t, found, "%+v", tc)

		// THEN no probe above the returned concentration is non-positive
		for k := 0; k < ZeroScanProbes; k++ {
			probe := float64(ZeroScanProbes-k) / 10
			if probe <= c {
				break
			}
			assert.Greater(t, tc.p.RateAt(probe, tc.off), 0.0, "probe %v above crossing %v", probe, c)
		}
		assert.LessOrEqual(t, tc.p.RateAt(c, tc.off), 0.0)
	}
}

func TestLocateZeroRate_SyntheticCurve_ClosedFormAgreement(t *testing.T) {
	// GIVEN 0.2·(c-2)/(5+(c-2)) + 0.03, which is zero at c = 0.31/0.23 ≈ 1.348
	c, found := LocateZeroRate(Params{Vmax: 0.2, Km: 5}, Offsets{Rate: 0.03, Conc: 2}, DefaultCutoffRate)

	// THEN the scan lands on the first probe below the root
	require.True(t, found)
	assert.InDelta(t, 1.3, c, 1e-12)
}

func TestLocateZeroRate_ZeroVmax_NotFound(t *testing.T) {
	// GIVEN Vmax = 0, so the model is the positive offset rate everywhere
	c, found := LocateZeroRate(Params{Vmax: 0, Km: 80}, Offsets{Rate: 0.05, Conc: 10}, DefaultCutoffRate)

	// THEN no crossing is reported
	assert.False(t, found)
	assert.Equal(t, 0.0, c)
}

func TestLocateZeroRate_AlwaysPositive_NotFound(t *testing.T) {
	_, found := LocateZeroRate(Params{Vmax: 0.15, Km: 80}, Offsets{Rate: 0.05, Conc: 10}, DefaultCutoffRate)
	assert.False(t, found)
}

func TestLocateZeroRate_ThresholdIsZeroNotCutoff(t *testing.T) {
	// GIVEN a curve whose minimum in range is positive but below the cutoff
	p := Params{Vmax: 0.2, Km: 5}
	off := Offsets{Rate: 0.01, Conc: 0}

	// WHEN scanned with a cutoff far above the curve
	_, foundHigh := LocateZeroRate(p, off, 10)
	_, foundLow := LocateZeroRate(p, off, 0)

	// THEN the cutoff has no effect on the result
	assert.False(t, foundHigh)
	assert.Equal(t, foundLow, foundHigh)
}
