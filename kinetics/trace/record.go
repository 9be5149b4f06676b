// Package trace provides iteration recording for the bounded least-squares solver.
// This package has no dependencies on kinetics/ or kinetics/lsq/; it stores pure data types.
package trace

// IterationRecord captures a single trial step of the solver.
type IterationRecord struct {
	Iteration int
	Params    []float64 // parameters after the step (unchanged if rejected)
	Cost      float64   // half the sum of squared residuals at Params
	Damping   float64   // damping factor used to compute the step
	StepNorm  float64
	Accepted  bool
}
