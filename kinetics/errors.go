package kinetics

import (
	"errors"
	"fmt"
)

// EmptyWindowError is returned when the first rate is already at or below the
// cutoff, leaving nothing to fit.
type EmptyWindowError struct {
	Cutoff       float64
	SeriesLength int
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("empty fit window: first of %d rates is not above cutoff %g", e.SeriesLength, e.Cutoff)
}

// DegenerateFitError is returned when the window cannot determine two parameters.
type DegenerateFitError struct {
	N      int
	Reason string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("degenerate fit window (%d samples): %s", e.N, e.Reason)
}

// FitConvergenceError is returned when the solver stops without reaching a
// local minimum. It carries the starting point and box for diagnosis.
type FitConvergenceError struct {
	Initial    Params
	Lower      float64
	Upper      float64
	Status     string
	Iterations int
}

func (e *FitConvergenceError) Error() string {
	return fmt.Sprintf("fit did not converge after %d iterations (%s); initial Vmax=%g Km=%g, bounds [%g, %g]",
		e.Iterations, e.Status, e.Initial.Vmax, e.Initial.Km, e.Lower, e.Upper)
}

// MisalignedSeriesError is returned when the concentration series is shorter
// than the rate window it must align with.
type MisalignedSeriesError struct {
	Concentrations int
	Rates          int
}

func (e *MisalignedSeriesError) Error() string {
	return fmt.Sprintf("concentration series has %d samples, rate window needs %d", e.Concentrations, e.Rates)
}

// TrialError attributes a failure to a trial.
type TrialError struct {
	Trial string
	Err   error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %q: %v", e.Trial, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

// ErrorKind returns a short stable label for the error taxonomy, used as the
// status column of result tables. Errors from other packages may supply their
// own label through a Kind() string method.
func ErrorKind(err error) string {
	var (
		empty      *EmptyWindowError
		degenerate *DegenerateFitError
		converge   *FitConvergenceError
		misaligned *MisalignedSeriesError
		kinded     interface{ Kind() string }
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &empty):
		return "empty-window"
	case errors.As(err, &degenerate):
		return "degenerate-fit"
	case errors.As(err, &converge):
		return "no-convergence"
	case errors.As(err, &misaligned):
		return "misaligned-series"
	case errors.As(err, &kinded):
		return kinded.Kind()
	}
	return "error"
}
