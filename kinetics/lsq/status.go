package lsq

// Status describes why Solve stopped.
type Status int

const (
	NotTerminated Status = iota
	// ExactFit means the residuals are identically zero.
	ExactFit
	// GradientConvergence means the projected gradient fell below GTol.
	GradientConvergence
	// FunctionConvergence means the relative cost reduction fell below FTol.
	FunctionConvergence
	// StepConvergence means the step length fell below XTol relative to the parameters.
	StepConvergence
	// IterationLimit means MaxIterations steps were taken without converging.
	IterationLimit
	// DampingLimit means no downhill step could be found before the damping ceiling.
	DampingLimit
	// NumericalError means the model produced a non-finite value at the starting point.
	NumericalError
)

var statusNames = map[Status]string{
	NotTerminated:       "not terminated",
	ExactFit:            "exact fit",
	GradientConvergence: "gradient convergence",
	FunctionConvergence: "function convergence",
	StepConvergence:     "step convergence",
	IterationLimit:      "iteration limit reached",
	DampingLimit:        "damping limit reached",
	NumericalError:      "non-finite model value",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Converged reports whether the status denotes a local minimum.
func (s Status) Converged() bool {
	switch s {
	case ExactFit, GradientConvergence, FunctionConvergence, StepConvergence:
		return true
	}
	return false
}
