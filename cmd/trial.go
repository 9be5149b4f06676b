package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hrp-kinetics/kinfit/kinetics"
	"github.com/hrp-kinetics/kinfit/kinetics/table"
	"github.com/hrp-kinetics/kinfit/kinetics/trace"
)

var trialID string // Trial column prefix to fit

// trialReport is the YAML view printed by the trial command.
type trialReport struct {
	Trial      string               `yaml:"trial"`
	Vmax       float64              `yaml:"vmax"`
	Km         float64              `yaml:"km"`
	OffsetRate float64              `yaml:"offset_rate"`
	OffsetConc float64              `yaml:"offset_conc"`
	MaxTime    int                  `yaml:"max_time"`
	MaxConc    float64              `yaml:"max_conc"`
	EqConc     *float64             `yaml:"eq_conc"`
	Status     string               `yaml:"status"`
	Iterations int                  `yaml:"iterations"`
	Cost       float64              `yaml:"cost"`
	StdErr     *kinetics.Params     `yaml:"std_err,omitempty"`
	Quality    *kinetics.FitQuality `yaml:"quality,omitempty"`
	Trace      *trace.TraceSummary  `yaml:"trace,omitempty"`
}

func newTrialReport(res *kinetics.FitResult) trialReport {
	d := res.Diagnostics
	return trialReport{
		Trial:      res.Trial,
		Vmax:       res.Vmax,
		Km:         res.Km,
		OffsetRate: res.OffsetRate,
		OffsetConc: res.OffsetConc,
		MaxTime:    res.MaxTime,
		MaxConc:    res.MaxConc,
		EqConc:     res.EqConc,
		Status:     d.Status,
		Iterations: d.Iterations,
		Cost:       d.Cost,
		StdErr:     d.StdErr,
		Quality:    d.Quality,
		Trace:      d.Trace,
	}
}

// fitSingleTrial locates one trial in the two tables and fits it.
func fitSingleTrial(smoothed, rates, id string, fc kinetics.FitConfig) (*kinetics.FitResult, error) {
	smoothedTable, err := table.LoadSeriesTable(smoothed)
	if err != nil {
		return nil, fmt.Errorf("loading smoothed table: %w", err)
	}
	ratesTable, err := table.LoadSeriesTable(rates)
	if err != nil {
		return nil, fmt.Errorf("loading rates table: %w", err)
	}
	set := table.BuildTrials(smoothedTable, ratesTable, id)
	for _, m := range set.Missing {
		if m.Trial == id {
			return nil, &kinetics.TrialError{Trial: id, Err: m}
		}
	}
	for _, t := range set.Trials {
		if t.ID == id {
			return kinetics.FitTrial(t, fc)
		}
	}
	return nil, fmt.Errorf("trial %q not found in %s", id, smoothed)
}

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Fit a single trial and print the parameters with diagnostics",
	Run: func(cmd *cobra.Command, args []string) {
		if smoothedPath == "" || ratesPath == "" || trialID == "" {
			logrus.Fatalf("--smoothed, --rates and --id are required")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q", traceLevel)
		}
		fc := resolveConfig(cmd).FitConfig()
		fc.Fit.TraceLevel = trace.TraceLevel(traceLevel)

		res, err := fitSingleTrial(smoothedPath, ratesPath, trialID, fc)
		if err != nil {
			logrus.Fatalf("Fit failed (%s): %v", kinetics.ErrorKind(err), err)
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if err := enc.Encode(newTrialReport(res)); err != nil {
			logrus.Fatalf("Failed to print result: %v", err)
		}
	},
}

func init() {
	trialCmd.Flags().StringVar(&smoothedPath, "smoothed", "", "CSV of smoothed concentrations (columns '<trial> smoothed')")
	trialCmd.Flags().StringVar(&ratesPath, "rates", "", "CSV of smoothed rates (columns '<trial> smoothed rate')")
	trialCmd.Flags().StringVar(&trialID, "id", "", "Trial id, the column prefix before ' smoothed'")
	trialCmd.Flags().StringVar(&traceLevel, "trace", "none", "Solver trace level: none, iterations")
}
