package importrun

import "strings"

type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusFinished RunStatus = "finished"
)

const (
	ExecutionAutomatic = "automatic"
	ExecutionManual    = "manual"
)

// NormalizeExecutionType keeps the caller's free-form tag and defaults an empty one to automatic.
func NormalizeExecutionType(executionType string) string {
	trimmed := strings.TrimSpace(executionType)
	if trimmed == "" {
		return ExecutionAutomatic
	}
	return trimmed
}

// Phase is a state of one orchestrated run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseClaiming   Phase = "claiming"
	PhaseValidating Phase = "validating"
	PhaseRunning    Phase = "running"
	PhaseFinalizing Phase = "finalizing"
	PhaseDone       Phase = "done"
	PhaseAborted    Phase = "aborted"
)

// Outcome is how a run ended from the caller's point of view.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeRefused   Outcome = "refused"
)

// Counters holds the progress totals of one run.
type Counters struct {
	Total     int64
	Processed int64
	Success   int64
	Errors    int64
}

// GCInterval is the record interval at which a run hints the runtime to reclaim memory.
const GCInterval = 100

// ShouldReclaim reports whether the record counter hit a reclamation boundary.
func ShouldReclaim(rowNumber int) bool {
	return rowNumber > 0 && rowNumber%GCInterval == 0
}
