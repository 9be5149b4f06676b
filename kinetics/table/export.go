package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hrp-kinetics/kinfit/kinetics"
)

// CSV column headers of the results table.
var resultColumns = []string{
	"Trial", "Vmax", "Km", "Offset Rate", "Offset Concentration", "Max Time", "Eq Conc", "Status", "Reason",
}

// CSV column headers of the fitted curve table.
var curveColumns = []string{"Trial", "Concentration", "Rate"}

// RunHeader captures the settings and counts of one batch run.
type RunHeader struct {
	RunID         string  `yaml:"run_id"`
	CreatedAt     string  `yaml:"created_at"`
	Compound      string  `yaml:"compound,omitempty"`
	SmoothedPath  string  `yaml:"smoothed_path,omitempty"`
	RatesPath     string  `yaml:"rates_path,omitempty"`
	CutoffRate    float64 `yaml:"cutoff_rate"`
	InitialVmax   float64 `yaml:"initial_vmax"`
	InitialKm     float64 `yaml:"initial_km"`
	LowerBound    float64 `yaml:"lower_bound"`
	UpperBound    float64 `yaml:"upper_bound"`
	MaxIterations int     `yaml:"max_iterations"`
	Trials        int     `yaml:"trials"`
	Succeeded     int     `yaml:"succeeded"`
	Failed        int     `yaml:"failed"`
}

// NewRunHeader stamps a fresh run id and timestamp on the run settings.
func NewRunHeader(cfg kinetics.FitConfig, report *kinetics.BatchReport) *RunHeader {
	return &RunHeader{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		CutoffRate:    cfg.CutoffRate,
		InitialVmax:   cfg.Fit.InitialGuess.Vmax,
		InitialKm:     cfg.Fit.InitialGuess.Km,
		LowerBound:    cfg.Fit.Lower,
		UpperBound:    cfg.Fit.Upper,
		MaxIterations: cfg.Fit.MaxIterations,
		Trials:        len(report.Outcomes),
		Succeeded:     report.Succeeded,
		Failed:        report.Failed,
	}
}

// ExportRunHeader writes the run header as YAML.
func ExportRunHeader(header *RunHeader, path string) error {
	data, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling run header: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run header: %w", err)
	}
	return nil
}

// LoadRunHeader reads a run header written by ExportRunHeader.
func LoadRunHeader(path string) (*RunHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run header: %w", err)
	}
	var header RunHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing run header: %w", err)
	}
	return &header, nil
}

// WriteResults writes one row per outcome. Failed trials keep their row with
// empty numeric cells so downstream tables can flag them; an absent zero
// crossing leaves Eq Conc empty.
func WriteResults(w io.Writer, report *kinetics.BatchReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(resultColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, o := range report.Outcomes {
		row := make([]string, len(resultColumns))
		row[0] = o.Trial
		if r := o.Result; r != nil {
			row[1] = formatFloat(r.Vmax)
			row[2] = formatFloat(r.Km)
			row[3] = formatFloat(r.OffsetRate)
			row[4] = formatFloat(r.OffsetConc)
			row[5] = strconv.Itoa(r.MaxTime)
			if r.EqConc != nil {
				row[6] = formatFloat(*r.EqConc)
			}
		}
		row[7] = o.Status()
		row[8] = o.Reason()
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for trial %q: %w", o.Trial, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportResults writes the results table to path.
func ExportResults(report *kinetics.BatchReport, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteResults(w, report) })
}

// WriteCurves writes the fitted curve of every result in long form.
func WriteCurves(w io.Writer, results []*kinetics.FitResult, points int) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(curveColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range results {
		for _, pt := range kinetics.FittedCurve(r, points) {
			if err := writer.Write([]string{r.Trial, formatFloat(pt.Conc), formatFloat(pt.Rate)}); err != nil {
				return fmt.Errorf("writing curve row for trial %q: %w", r.Trial, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCurves writes the fitted curve table to path.
func ExportCurves(results []*kinetics.FitResult, points int, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCurves(w, results, points) })
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
