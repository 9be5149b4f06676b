package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hrp-kinetics/kinfit/kinetics"
)

// FitDefaults is the fit section of defaults.yaml.
type FitDefaults struct {
	CutoffRate    float64 `yaml:"cutoff_rate"`
	InitialVmax   float64 `yaml:"initial_vmax"`
	InitialKm     float64 `yaml:"initial_km"`
	LowerBound    float64 `yaml:"lower_bound"`
	UpperBound    float64 `yaml:"upper_bound"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// Compound is display metadata for a compound key found in trial ids.
type Compound struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version   string              `yaml:"version"`
	Fit       FitDefaults         `yaml:"fit"`
	Compounds map[string]Compound `yaml:"compounds"`
}

// builtinConfig mirrors kinetics.DefaultFitConfig; keys absent from
// defaults.yaml keep these values.
func builtinConfig() Config {
	fc := kinetics.DefaultFitConfig()
	return Config{
		Fit: FitDefaults{
			CutoffRate:    fc.CutoffRate,
			InitialVmax:   fc.Fit.InitialGuess.Vmax,
			InitialKm:     fc.Fit.InitialGuess.Km,
			LowerBound:    fc.Fit.Lower,
			UpperBound:    fc.Fit.Upper,
			MaxIterations: fc.Fit.MaxIterations,
			Tolerance:     fc.Fit.Tolerance,
		},
	}
}

// loadDefaultsConfig parses defaults.yaml over the built-in values.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (Config, error) {
	cfg := builtinConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading defaults file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing defaults YAML %s: %w", path, err)
	}
	if err := cfg.Fit.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (f FitDefaults) validate() error {
	for name, v := range map[string]float64{
		"cutoff_rate": f.CutoffRate, "initial_vmax": f.InitialVmax, "initial_km": f.InitialKm,
		"lower_bound": f.LowerBound, "upper_bound": f.UpperBound, "tolerance": f.Tolerance,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("fit.%s must be finite, got %v", name, v)
		}
	}
	if f.LowerBound > f.UpperBound {
		return fmt.Errorf("fit.lower_bound %g exceeds fit.upper_bound %g", f.LowerBound, f.UpperBound)
	}
	if f.InitialVmax < f.LowerBound || f.InitialVmax > f.UpperBound || f.InitialKm < f.LowerBound || f.InitialKm > f.UpperBound {
		return fmt.Errorf("initial guess (%g, %g) outside bounds [%g, %g]", f.InitialVmax, f.InitialKm, f.LowerBound, f.UpperBound)
	}
	if f.MaxIterations <= 0 {
		return fmt.Errorf("fit.max_iterations must be positive, got %d", f.MaxIterations)
	}
	if f.Tolerance <= 0 {
		return fmt.Errorf("fit.tolerance must be positive, got %g", f.Tolerance)
	}
	return nil
}

// FitConfig converts the file settings to the pipeline configuration.
func (c Config) FitConfig() kinetics.FitConfig {
	fc := kinetics.DefaultFitConfig()
	fc.CutoffRate = c.Fit.CutoffRate
	fc.Fit.InitialGuess = kinetics.Params{Vmax: c.Fit.InitialVmax, Km: c.Fit.InitialKm}
	fc.Fit.Lower = c.Fit.LowerBound
	fc.Fit.Upper = c.Fit.UpperBound
	fc.Fit.MaxIterations = c.Fit.MaxIterations
	fc.Fit.Tolerance = c.Fit.Tolerance
	return fc
}

// CompoundFor returns the metadata registered under a compound key.
func (c Config) CompoundFor(key string) (Compound, bool) {
	comp, ok := c.Compounds[key]
	return comp, ok
}
