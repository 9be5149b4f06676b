package trace

// TraceSummary aggregates statistics from a SolverTrace.
type TraceSummary struct {
	TotalIterations int     `yaml:"total_iterations"`
	AcceptedSteps   int     `yaml:"accepted_steps"`
	RejectedSteps   int     `yaml:"rejected_steps"`
	InitialCost     float64 `yaml:"initial_cost"`
	FinalCost       float64 `yaml:"final_cost"`
	MaxDamping      float64 `yaml:"max_damping"`
}

// Summarize computes aggregate statistics from a SolverTrace.
// Iteration 0 is the starting point and is not counted as a step.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SolverTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil || len(st.Iterations) == 0 {
		return summary
	}

	summary.InitialCost = st.Iterations[0].Cost
	summary.FinalCost = summary.InitialCost
	for _, it := range st.Iterations {
		if it.Damping > summary.MaxDamping {
			summary.MaxDamping = it.Damping
		}
		if it.Iteration == 0 {
			continue
		}
		summary.TotalIterations++
		if it.Accepted {
			summary.AcceptedSteps++
			summary.FinalCost = it.Cost
		} else {
			summary.RejectedSteps++
		}
	}
	return summary
}
