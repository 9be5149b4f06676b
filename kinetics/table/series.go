// Package table moves trial data between CSV files and the kinetics pipeline.
//
// Inputs are two time-indexed tables, one of smoothed substrate concentration
// (columns "<trial> smoothed") and one of derived rates (columns
// "<trial> smoothed rate"). Outputs are the results table, a long-form fitted
// curve table and a YAML run header.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hrp-kinetics/kinfit/kinetics"
)

// Column suffixes that identify a trial's series in the input tables.
const (
	SmoothedSuffix = " smoothed"
	RateSuffix     = " smoothed rate"
)

// SeriesTable is a time-indexed table of named numeric columns.
// Empty cells are read as NaN.
type SeriesTable struct {
	Time    []int
	Columns []string // file order, excluding the time column
	Values  map[string][]float64
}

// LoadSeriesTable reads a CSV whose first column is the integer time index.
func LoadSeriesTable(path string) (*SeriesTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening series table: %w", err)
	}
	defer func() { _ = file.Close() }()

	st, err := ReadSeriesTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// ReadSeriesTable parses a series table from r.
func ReadSeriesTable(r io.Reader) (*SeriesTable, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("CSV header has %d columns, expected a time column and at least one series", len(header))
	}

	st := &SeriesTable{
		Columns: make([]string, 0, len(header)-1),
		Values:  make(map[string][]float64, len(header)-1),
	}
	for _, name := range header[1:] {
		name = strings.TrimSpace(name)
		if _, dup := st.Values[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		st.Columns = append(st.Columns, name)
		st.Values[name] = nil
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		t, err := parseTimeIndex(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: time index %q: %w", line, row[0], err)
		}
		st.Time = append(st.Time, t)
		for i, name := range st.Columns {
			v, err := parseCell(row[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, name, err)
			}
			st.Values[name] = append(st.Values[name], v)
		}
	}
	return st, nil
}

// parseTimeIndex accepts integers and integral floats ("3", "3.0").
func parseTimeIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// MissingSeriesError reports a trial present in one input table but not the other.
type MissingSeriesError struct {
	Trial  string
	Column string
}

func (e *MissingSeriesError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// Kind labels the failure in result tables.
func (e *MissingSeriesError) Kind() string { return "missing-series" }

// TrialSet is the pairing of the two input tables.
type TrialSet struct {
	Trials  []kinetics.Trial
	Missing []*MissingSeriesError
}

// BuildTrials pairs "<trial> smoothed" columns with "<trial> smoothed rate"
// columns. Only trial ids containing compound are kept; an empty compound
// keeps every trial.
func BuildTrials(smoothed, rates *SeriesTable, compound string) *TrialSet {
	set := &TrialSet{}
	seen := make(map[string]bool)

	for _, col := range smoothed.Columns {
		id, ok := strings.CutSuffix(col, SmoothedSuffix)
		if !ok || !strings.Contains(id, compound) {
			continue
		}
		seen[id] = true
		rateCol := id + RateSuffix
		rateValues, ok := rates.Values[rateCol]
		if !ok {
			set.Missing = append(set.Missing, &MissingSeriesError{Trial: id, Column: rateCol})
			continue
		}
		set.Trials = append(set.Trials, kinetics.Trial{
			ID:             id,
			Concentrations: smoothed.Values[col],
			Rates:          rateValues,
		})
	}

	for _, col := range rates.Columns {
		id, ok := strings.CutSuffix(col, RateSuffix)
		if !ok || seen[id] || !strings.Contains(id, compound) {
			continue
		}
		set.Missing = append(set.Missing, &MissingSeriesError{Trial: id, Column: id + SmoothedSuffix})
	}
	return set
}
