package kinetics

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Trial is one experimental run: a smoothed substrate-concentration series and
// the derived rate series, aligned by time index.
type Trial struct {
	ID             string
	Concentrations []float64
	Rates          []float64
}

// FitConfig holds the settings shared by every trial of a run.
type FitConfig struct {
	CutoffRate float64
	Fit        FitOptions
}

// DefaultFitConfig returns cutoff 0.02 and DefaultFitOptions.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		CutoffRate: DefaultCutoffRate,
		Fit:        DefaultFitOptions(),
	}
}

// FitResult is the published record for one trial.
type FitResult struct {
	Trial      string   `json:"trial"`
	Vmax       float64  `json:"vmax"`
	Km         float64  `json:"km"`
	OffsetRate float64  `json:"offset_rate"`
	OffsetConc float64  `json:"offset_conc"`
	MaxTime    int      `json:"max_time"`
	EqConc     *float64 `json:"eq_conc"` // nil when the model never reaches zero rate in the scan range
	MaxConc    float64  `json:"max_conc"`

	Diagnostics Diagnostics `json:"-"`
}

// FitTrial runs cutoff selection, parameter fitting and the zero-rate scan for
// one trial. Errors are returned as their specific kind.
func FitTrial(trial Trial, cfg FitConfig) (*FitResult, error) {
	concs, rates, err := trial.Window(cfg.CutoffRate)
	if err != nil {
		return nil, err
	}
	fit, err := FitParameters(concs, rates, cfg.Fit)
	if err != nil {
		return nil, err
	}

	result := &FitResult{
		Trial:       trial.ID,
		Vmax:        fit.Params.Vmax,
		Km:          fit.Params.Km,
		OffsetRate:  fit.Offsets.Rate,
		OffsetConc:  fit.Offsets.Conc,
		MaxTime:     fit.MaxTime,
		MaxConc:     fit.MaxConc,
		Diagnostics: fit.Diagnostics,
	}
	if eq, found := LocateZeroRate(fit.Params, fit.Offsets, cfg.CutoffRate); found {
		result.EqConc = &eq
	}
	return result, nil
}

// TrialOutcome is one row of a batch: either a result or the error that
// prevented it.
type TrialOutcome struct {
	Trial  string
	Result *FitResult
	Err    error
}

// Failed reports whether the trial produced no result.
func (o TrialOutcome) Failed() bool { return o.Err != nil }

// Status is "ok" or the error kind.
func (o TrialOutcome) Status() string { return ErrorKind(o.Err) }

// Reason is the error message, empty for successful trials.
func (o TrialOutcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	var te *TrialError
	if errors.As(o.Err, &te) {
		return te.Err.Error()
	}
	return o.Err.Error()
}

// BatchReport collects outcomes in input order.
type BatchReport struct {
	Outcomes  []TrialOutcome
	Succeeded int
	Failed    int
}

// Record appends an outcome and updates the counters. A non-nil err is
// attributed to the trial.
func (b *BatchReport) Record(trial string, result *FitResult, err error) {
	if err != nil {
		b.Outcomes = append(b.Outcomes, TrialOutcome{Trial: trial, Err: &TrialError{Trial: trial, Err: err}})
		b.Failed++
		return
	}
	b.Outcomes = append(b.Outcomes, TrialOutcome{Trial: trial, Result: result})
	b.Succeeded++
}

// Results returns the successful results in input order.
func (b *BatchReport) Results() []*FitResult {
	out := make([]*FitResult, 0, b.Succeeded)
	for _, o := range b.Outcomes {
		if o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// FitTrials fits every trial independently. A failing trial is recorded
// against its id and does not stop the others.
func FitTrials(trials []Trial, cfg FitConfig) *BatchReport {
	report := &BatchReport{Outcomes: make([]TrialOutcome, 0, len(trials))}
	for _, trial := range trials {
		result, err := FitTrial(trial, cfg)
		if err != nil {
			logrus.Warnf("trial %q: %s: %v", trial.ID, ErrorKind(err), err)
		} else {
			logrus.Debugf("trial %q: Vmax=%g Km=%g max_time=%d", trial.ID, result.Vmax, result.Km, result.MaxTime)
		}
		report.Record(trial.ID, result, err)
	}
	logrus.Infof("fitted %d trials: %d ok, %d failed", len(trials), report.Succeeded, report.Failed)
	return report
}
