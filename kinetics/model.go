package kinetics

import (
	"gonum.org/v1/gonum/floats"
)

// Params are the two free parameters of the Michaelis-Menten equation.
type Params struct {
	Vmax float64 `json:"vmax" yaml:"vmax"`
	Km   float64 `json:"km" yaml:"km"`
}

// Offsets are the baselines removed from both axes before fitting.
type Offsets struct {
	Rate float64 `json:"offset_rate" yaml:"offset_rate"`
	Conc float64 `json:"offset_conc" yaml:"offset_conc"`
}

// MichaelisMenten returns Vmax·s / (Km + s). At s = 0 it returns 0, including
// the Km = 0 case where the quotient is undefined.
func MichaelisMenten(s float64, p Params) float64 {
	if s == 0 {
		return 0
	}
	return p.Vmax * s / (p.Km + s)
}

// RateAt evaluates the offset-adjusted model at a raw concentration.
func (p Params) RateAt(conc float64, off Offsets) float64 {
	return MichaelisMenten(conc-off.Conc, p) + off.Rate
}

// michaelisMentenModel adapts the equation to the solver's parameter vector
// [Vmax, Km] and fills the analytic gradient.
func michaelisMentenModel(s float64, p []float64, grad []float64) float64 {
	if s == 0 {
		if grad != nil {
			grad[0], grad[1] = 0, 0
		}
		return 0
	}
	den := p[1] + s
	if grad != nil {
		grad[0] = s / den
		grad[1] = -p[0] * s / (den * den)
	}
	return p[0] * s / den
}

// DefaultCurvePoints is the resolution of FittedCurve.
const DefaultCurvePoints = 100

// CurvePoint is one sample of a fitted curve in raw (un-offset) units.
type CurvePoint struct {
	Conc float64
	Rate float64
}

// FittedCurve samples the offset-adjusted model at evenly spaced concentrations
// spanning the retained window. Returns nil for fewer than two points.
func FittedCurve(res *FitResult, points int) []CurvePoint {
	if res == nil || points < 2 {
		return nil
	}
	concs := make([]float64, points)
	floats.Span(concs, res.OffsetConc, res.MaxConc)
	params := Params{Vmax: res.Vmax, Km: res.Km}
	offsets := Offsets{Rate: res.OffsetRate, Conc: res.OffsetConc}
	curve := make([]CurvePoint, points)
	for i, c := range concs {
		curve[i] = CurvePoint{Conc: c, Rate: params.RateAt(c, offsets)}
	}
	return curve
}
