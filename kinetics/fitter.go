package kinetics

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/hrp-kinetics/kinfit/kinetics/lsq"
	"github.com/hrp-kinetics/kinfit/kinetics/trace"
)

// FitOptions configures the Parameter Fitter.
type FitOptions struct {
	InitialGuess  Params
	Lower         float64 // applied to both Vmax and Km
	Upper         float64 // applied to both Vmax and Km
	MaxIterations int
	Tolerance     float64 // ftol, xtol and gtol of the solver
	TraceLevel    trace.TraceLevel
}

// DefaultFitOptions returns the initial guess (Vmax=0.15, Km=1) and box [0, 1000].
func DefaultFitOptions() FitOptions {
	settings := lsq.DefaultSettings()
	return FitOptions{
		InitialGuess:  Params{Vmax: 0.15, Km: 1},
		Lower:         0,
		Upper:         1000,
		MaxIterations: settings.MaxIterations,
		Tolerance:     settings.FTol,
		TraceLevel:    trace.TraceLevelNone,
	}
}

// Fit is the Parameter Fitter output for one window.
type Fit struct {
	Params      Params
	Offsets     Offsets
	MaxTime     int     // index of the last retained sample
	MaxConc     float64 // largest concentration in the window
	Diagnostics Diagnostics
}

// Diagnostics carries solver details that are not part of the published result.
type Diagnostics struct {
	Status     string
	Iterations int
	Cost       float64
	// Covariance is the 2×2 parameter covariance in [Vmax, Km] order; nil when
	// it cannot be estimated (fewer than three samples or a singular Jacobian).
	Covariance [][]float64
	StdErr     *Params
	Quality    *FitQuality
	Trace      *trace.TraceSummary
	Iterates   []trace.IterationRecord
}

// FitParameters fits rate = Vmax·c/(Km + c) to the window after subtracting the
// minimum concentration and minimum rate from each axis.
func FitParameters(concs, rates []float64, opts FitOptions) (*Fit, error) {
	n := len(rates)
	if n == 0 {
		return nil, &EmptyWindowError{}
	}
	if len(concs) != n {
		return nil, &MisalignedSeriesError{Concentrations: len(concs), Rates: n}
	}
	for i := 0; i < n; i++ {
		if !finite(concs[i]) || !finite(rates[i]) {
			return nil, &DegenerateFitError{N: n, Reason: fmt.Sprintf("non-finite sample at index %d", i)}
		}
	}
	if n < 2 {
		return nil, &DegenerateFitError{N: n, Reason: "at least two samples are required"}
	}
	if floats.Max(concs) == floats.Min(concs) {
		return nil, &DegenerateFitError{N: n, Reason: "concentration window has zero variance"}
	}

	fit := &Fit{
		Offsets: Offsets{Rate: floats.Min(rates), Conc: floats.Min(concs)},
		MaxTime: n - 1,
		MaxConc: floats.Max(concs),
	}
	x := make([]float64, n)
	y := make([]float64, n)
	copy(x, concs)
	copy(y, rates)
	floats.AddConst(-fit.Offsets.Conc, x)
	floats.AddConst(-fit.Offsets.Rate, y)

	settings := lsq.Settings{
		MaxIterations:  opts.MaxIterations,
		FTol:           opts.Tolerance,
		XTol:           opts.Tolerance,
		GTol:           opts.Tolerance,
		InitialDamping: lsq.DefaultSettings().InitialDamping,
	}
	var st *trace.SolverTrace
	if opts.TraceLevel == trace.TraceLevelIterations {
		st = trace.NewSolverTrace(trace.TraceConfig{Level: opts.TraceLevel})
		settings.Trace = st
	}

	res, err := lsq.Solve(lsq.Problem{
		Model:   michaelisMentenModel,
		X:       x,
		Y:       y,
		Initial: []float64{opts.InitialGuess.Vmax, opts.InitialGuess.Km},
		Lower:   []float64{opts.Lower, opts.Lower},
		Upper:   []float64{opts.Upper, opts.Upper},
	}, settings)
	if err != nil {
		return nil, fmt.Errorf("configuring solver: %w", err)
	}

	convErr := &FitConvergenceError{
		Initial:    opts.InitialGuess,
		Lower:      opts.Lower,
		Upper:      opts.Upper,
		Status:     res.Status.String(),
		Iterations: res.Iterations,
	}
	if !res.Status.Converged() {
		return nil, convErr
	}
	fit.Params = Params{Vmax: res.Params[0], Km: res.Params[1]}
	if !withinBounds(fit.Params.Vmax, opts) || !withinBounds(fit.Params.Km, opts) {
		convErr.Status = "parameters outside bounds"
		return nil, convErr
	}

	fit.Diagnostics = Diagnostics{
		Status:     res.Status.String(),
		Iterations: res.Iterations,
		Cost:       res.Cost,
	}
	if res.Covariance != nil {
		fit.Diagnostics.Covariance = [][]float64{
			{res.Covariance.At(0, 0), res.Covariance.At(0, 1)},
			{res.Covariance.At(1, 0), res.Covariance.At(1, 1)},
		}
		fit.Diagnostics.StdErr = &Params{
			Vmax: math.Sqrt(res.Covariance.At(0, 0)),
			Km:   math.Sqrt(res.Covariance.At(1, 1)),
		}
	}
	predicted := make([]float64, n)
	for i := range x {
		predicted[i] = MichaelisMenten(x[i], fit.Params)
	}
	if q, err := ComputeFitQuality(y, predicted); err == nil {
		fit.Diagnostics.Quality = q
	}
	if st != nil {
		fit.Diagnostics.Trace = trace.Summarize(st)
		fit.Diagnostics.Iterates = st.Iterations
	}

	logrus.Debugf("fit: Vmax=%g Km=%g offsets=(rate %g, conc %g) %s in %d iterations",
		fit.Params.Vmax, fit.Params.Km, fit.Offsets.Rate, fit.Offsets.Conc, res.Status, res.Iterations)
	return fit, nil
}

func withinBounds(v float64, opts FitOptions) bool {
	return v >= opts.Lower && v <= opts.Upper
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
