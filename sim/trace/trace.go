package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every assignment and full-lot retry.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run.
type SimulationTrace struct {
	Config      TraceConfig
	Assignments []AssignmentRecord
	Retries     []RetryRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil for TraceLevelNone so callers can skip recording with a nil check.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == TraceLevelNone || config.Level == "" {
		return nil
	}
	return &SimulationTrace{
		Config:      config,
		Assignments: make([]AssignmentRecord, 0),
		Retries:     make([]RetryRecord, 0),
	}
}

// RecordAssignment appends an assignment record. Safe on a nil trace.
func (st *SimulationTrace) RecordAssignment(record AssignmentRecord) {
	if st == nil {
		return
	}
	st.Assignments = append(st.Assignments, record)
}

// RecordRetry appends a full-lot retry record. Safe on a nil trace.
func (st *SimulationTrace) RecordRetry(record RetryRecord) {
	if st == nil {
		return
	}
	st.Retries = append(st.Retries, record)
}
