package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hrp-kinetics/kinfit/kinetics"
	"github.com/hrp-kinetics/kinfit/kinetics/table"
	"github.com/hrp-kinetics/kinfit/kinetics/trace"
)

var (
	smoothedPath string // Smoothed concentration table
	ratesPath    string // Smoothed rate table
	compoundKey  string // Substring selecting trial columns
	resultsPath  string // Per-trial results CSV
	curvesPath   string // Fitted curve CSV (optional)
	headerPath   string // Run header YAML (optional)
	traceLevel   string // Solver trace verbosity
)

// fitOutputs names the files a batch fit writes. Empty paths are skipped.
type fitOutputs struct {
	Results string
	Curves  string
	Header  string
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit Michaelis-Menten parameters for every trial of a compound",
	Run: func(cmd *cobra.Command, args []string) {
		if smoothedPath == "" || ratesPath == "" {
			logrus.Fatalf("--smoothed and --rates are required")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q", traceLevel)
		}
		cfg := resolveConfig(cmd)
		fc := cfg.FitConfig()
		fc.Fit.TraceLevel = trace.TraceLevel(traceLevel)
		if comp, ok := cfg.CompoundFor(compoundKey); ok {
			logrus.Infof("Fitting %s trials (concentrations in %s)", comp.Name, comp.Unit)
		}

		report, err := runFit(smoothedPath, ratesPath, compoundKey, fc,
			fitOutputs{Results: resultsPath, Curves: curvesPath, Header: headerPath})
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Printf("Fitted %d trial(s): %d succeeded, %d failed\n",
			len(report.Outcomes), report.Succeeded, report.Failed)
		for _, o := range report.Outcomes {
			if o.Failed() {
				fmt.Printf("  %s: %s (%s)\n", o.Trial, o.Status(), o.Reason())
			}
		}
	},
}

// runFit loads both tables, fits every selected trial and writes the outputs.
// Columns present in only one table are reported as failed trials rather than
// aborting the batch.
func runFit(smoothed, rates, compound string, fc kinetics.FitConfig, out fitOutputs) (*kinetics.BatchReport, error) {
	smoothedTable, err := table.LoadSeriesTable(smoothed)
	if err != nil {
		return nil, fmt.Errorf("loading smoothed table: %w", err)
	}
	ratesTable, err := table.LoadSeriesTable(rates)
	if err != nil {
		return nil, fmt.Errorf("loading rates table: %w", err)
	}
	set := table.BuildTrials(smoothedTable, ratesTable, compound)
	if len(set.Trials) == 0 && len(set.Missing) == 0 {
		return nil, fmt.Errorf("no trial columns match compound %q", compound)
	}
	logrus.Debugf("Selected %d trial(s), %d with a missing series", len(set.Trials), len(set.Missing))

	report := kinetics.FitTrials(set.Trials, fc)
	for _, m := range set.Missing {
		logrus.Warnf("Trial %s: %v", m.Trial, m)
		report.Record(m.Trial, nil, m)
	}

	if out.Results != "" {
		if err := table.ExportResults(report, out.Results); err != nil {
			return report, err
		}
		logrus.Infof("Results written to %s", out.Results)
	}
	if out.Curves != "" {
		if err := table.ExportCurves(report.Results(), kinetics.DefaultCurvePoints, out.Curves); err != nil {
			return report, err
		}
		logrus.Infof("Fitted curves written to %s", out.Curves)
	}
	if out.Header != "" {
		header := table.NewRunHeader(fc, report)
		header.Compound = compound
		header.SmoothedPath = smoothed
		header.RatesPath = rates
		if err := table.ExportRunHeader(header, out.Header); err != nil {
			return report, err
		}
	}
	return report, nil
}

func init() {
	fitCmd.Flags().StringVar(&smoothedPath, "smoothed", "", "CSV of smoothed concentrations (columns '<trial> smoothed')")
	fitCmd.Flags().StringVar(&ratesPath, "rates", "", "CSV of smoothed rates (columns '<trial> smoothed rate')")
	fitCmd.Flags().StringVar(&compoundKey, "compound", "", "Only fit trials whose id contains this key (empty selects all)")
	fitCmd.Flags().StringVar(&resultsPath, "out", "fit_results.csv", "Per-trial results CSV")
	fitCmd.Flags().StringVar(&curvesPath, "curves", "", "Fitted curve CSV (empty disables)")
	fitCmd.Flags().StringVar(&headerPath, "header", "", "Run header YAML (empty disables)")
	fitCmd.Flags().StringVar(&traceLevel, "trace", "none", "Solver trace level: none, iterations")
}
