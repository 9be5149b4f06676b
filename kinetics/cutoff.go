package kinetics

// DefaultCutoffRate is the rate at or below which trailing samples are dropped.
const DefaultCutoffRate = 0.02

// SelectCutoff returns the length of the leading run of rates strictly above
// cutoff. The scan stops at the first rate at or below cutoff; later samples
// are never included even if they rise above it again. NaN stops the scan.
func SelectCutoff(rates []float64, cutoff float64) int {
	for i, r := range rates {
		if !(r > cutoff) {
			return i
		}
	}
	return len(rates)
}

// Window returns the aligned concentration and rate prefixes retained by the
// cutoff. The returned slices share storage with the trial.
func (t Trial) Window(cutoff float64) (concs, rates []float64, err error) {
	n := SelectCutoff(t.Rates, cutoff)
	if n == 0 {
		return nil, nil, &EmptyWindowError{Cutoff: cutoff, SeriesLength: len(t.Rates)}
	}
	if len(t.Concentrations) < n {
		return nil, nil, &MisalignedSeriesError{Concentrations: len(t.Concentrations), Rates: n}
	}
	return t.Concentrations[:n], t.Rates[:n], nil
}
