package trace

// TraceLevel controls the verbosity of solver tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelIterations captures every accepted and rejected solver step.
	TraceLevelIterations TraceLevel = "iterations"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelIterations: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SolverTrace collects iteration records during one fit.
type SolverTrace struct {
	Config     TraceConfig
	Iterations []IterationRecord
}

// NewSolverTrace creates a SolverTrace ready for recording.
func NewSolverTrace(config TraceConfig) *SolverTrace {
	return &SolverTrace{
		Config:     config,
		Iterations: make([]IterationRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on a nil trace.
func (st *SolverTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelIterations
}

// RecordIteration appends an iteration record. The params slice is copied.
func (st *SolverTrace) RecordIteration(record IterationRecord) {
	if !st.Enabled() {
		return
	}
	record.Params = append([]float64(nil), record.Params...)
	st.Iterations = append(st.Iterations, record)
}
