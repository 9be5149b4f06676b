package kinetics

// Zero-rate scan grid: 1000 probes from 100 down to 0.1 in steps of 0.1.
const (
	ZeroScanProbes  = 1000
	zeroScanPerUnit = 10 // probes per concentration unit
)

// LocateZeroRate scans concentrations from 100 down to 0.1 and returns the
// first one at which Vmax·(c-offConc)/(Km+(c-offConc)) + offRate ≤ 0.
// The second result is false when no probe reaches zero, which is a valid
// outcome rather than an error.
//
// cutoffRate does not move the threshold: the crossing is tested against zero.
func LocateZeroRate(p Params, off Offsets, cutoffRate float64) (float64, bool) {
	for k := 0; k < ZeroScanProbes; k++ {
		c := float64(ZeroScanProbes-k) / zeroScanPerUnit
		if p.RateAt(c, off) <= 0 {
			return c, true
		}
	}
	return 0, false
}
