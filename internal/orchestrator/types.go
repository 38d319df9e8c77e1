// Package orchestrator coordinates one compliance-change request: it
// routes delegate tasks to the capability agents, merges their outputs
// into a single report, and hands the report to the notification sink.
package orchestrator

import (
	"github.com/complianceops/regwatch/internal/fedreg"
)

// State identifies a workflow state. A workflow instance moves forward
// through the states in order and is discarded after one report.
type State int

const (
	StateStart State = iota
	StateFetching
	StateComparing
	StateSynthesizing
	StateNotifying
	StateDone
	StateError
)

func (s State) String() string {
	names := [...]string{
		"start",
		"fetching",
		"comparing",
		"synthesizing",
		"notifying",
		"done",
		"error",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// IsTerminal returns true for the two absorbing states.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateError
}

// Request is one user request: the free-text prompt plus the two
// structured fields every delegate task needs.
type Request struct {
	Prompt   string
	Agency   fedreg.Agency
	DaysBack int
}

// Report is the merged output of one workflow run. Sections always render
// in the fixed order: recent rules, change vs previous period, why it
// matters.
type Report struct {
	FetchSection      string
	ComparisonSection string
	NarrativeSection  string
}

// Outcome summarizes a finished workflow instance.
type Outcome struct {
	// Report is always non-nil for a run that reached synthesis.
	Report *Report

	// Body is the serialized report handed to the notification sink.
	Body string

	// Final is the terminal state the workflow reached.
	Final State

	// Notified reports whether the sink accepted the report.
	Notified bool

	// NotifyStatus is the human-readable delivery status, including the
	// reason when notification was skipped or failed.
	NotifyStatus string
}

// ProgressEvent is emitted to the user during workflow execution.
type ProgressEvent struct {
	State   State
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the status of a workflow state transition.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)
