package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/complianceops/regwatch/internal/agent"
	"github.com/complianceops/regwatch/internal/fedreg"
	"github.com/complianceops/regwatch/internal/notify"
)

// Workflow is the top-level state machine for one user request. It
// reaches the capability agents exclusively through its Invoker, merges
// their outputs into a report, and hands the report to the notification
// sink exactly once. A Workflow instance is one-shot: it is discarded
// after producing its report.
type Workflow struct {
	invoker  Invoker
	sink     notify.Sink
	progress *ProgressReporter

	recipient string

	mu    sync.Mutex
	state State
	ran   bool
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithRecipient sets the notification recipient address.
func WithRecipient(addr string) WorkflowOption {
	return func(w *Workflow) { w.recipient = addr }
}

// NewWorkflow creates a Workflow over the given delegate invoker and
// notification sink.
func NewWorkflow(invoker Invoker, sink notify.Sink, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		invoker:   invoker,
		sink:      sink,
		progress:  NewProgressReporter(),
		recipient: notify.DefaultRecipient,
		state:     StateStart,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Progress returns a channel that emits progress events.
func (w *Workflow) Progress() <-chan ProgressEvent {
	return w.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when
// the workflow outcome has been consumed.
func (w *Workflow) Close() {
	w.progress.Close()
}

// State returns the workflow's current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// setState transitions the workflow and emits a working event for the
// new state.
func (w *Workflow) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()

	if !s.IsTerminal() {
		w.progress.Emit(ProgressEvent{State: s, Status: ProgressWorking})
	}
}

// Run processes one request end to end. Delegate failures degrade into
// inline error notes in the affected section; they never abort the run.
// The returned error is non-nil only for instance misuse, never for a
// degraded report.
func (w *Workflow) Run(ctx context.Context, req Request) (*Outcome, error) {
	w.mu.Lock()
	if w.ran {
		w.mu.Unlock()
		return nil, fmt.Errorf("orchestrator: workflow instance already used")
	}
	w.ran = true
	w.mu.Unlock()

	// START: normalize the structured fields. Natural-language
	// extraction is the caller's concern; the prompt is carried
	// verbatim into the delegate instructions.
	req.Agency = fedreg.ParseAgency(string(req.Agency))
	if req.DaysBack <= 0 {
		req.DaysBack = agent.DefaultDaysBack
	}
	w.progress.Emit(ProgressEvent{State: StateStart, Status: ProgressComplete})

	params := agent.TaskParams{Agency: string(req.Agency), DaysBack: req.DaysBack}

	calls := []DelegateCall{
		{
			Capability:  agent.CapabilityFetch,
			Instruction: fetchInstruction(req),
			Params:      params,
		},
		{
			Capability:  agent.CapabilityComparator,
			Instruction: compareInstruction(req),
			Params:      params,
		},
	}

	// The two delegate calls overlap, but their results are consumed in
	// fixed order so the fetch section always precedes the comparison
	// section regardless of which call returns first.
	channels := NewFanOut(w.invoker).Run(ctx, calls)

	w.setState(StateFetching)
	fetchRes := <-channels[0]
	fetchSection := w.sectionFromResult(StateFetching, fetchRes)

	w.setState(StateComparing)
	compareRes := <-channels[1]
	comparisonSection := w.sectionFromResult(StateComparing, compareRes)

	w.setState(StateSynthesizing)
	report := Synthesize(req, fetchSection, comparisonSection)
	body := report.Render()
	w.progress.Emit(ProgressEvent{State: StateSynthesizing, Status: ProgressComplete})

	outcome := &Outcome{
		Report: report,
		Body:   body,
	}

	w.setState(StateNotifying)
	bothFailed := fetchRes.Err != nil && compareRes.Err != nil
	switch {
	case bothFailed:
		// Both sub-calls failed and produced nothing worth sending:
		// record the skip instead of mailing a report of error notes.
		outcome.NotifyStatus = "notification skipped: no delegate produced output"
		w.progress.Emit(ProgressEvent{State: StateNotifying, Status: ProgressFailed, Message: outcome.NotifyStatus})
	default:
		err := w.sink.Send(ctx, notify.Message{
			Subject:   notify.DefaultSubject,
			Recipient: w.recipient,
			Body:      body,
		})
		if err != nil {
			outcome.NotifyStatus = fmt.Sprintf("notification failed: %v", err)
			w.progress.Emit(ProgressEvent{State: StateNotifying, Status: ProgressFailed, Message: err.Error()})
		} else {
			outcome.Notified = true
			outcome.NotifyStatus = fmt.Sprintf("notification sent to %s", w.recipient)
			w.progress.Emit(ProgressEvent{State: StateNotifying, Status: ProgressComplete})
		}
	}

	final := StateDone
	if bothFailed {
		final = StateError
	}
	w.setState(final)
	outcome.Final = final

	return outcome, nil
}

// sectionFromResult converts one delegate result into its report section.
// A failed delegate contributes an inline error note; the section is
// never silently dropped.
func (w *Workflow) sectionFromResult(state State, res DelegateResult) string {
	if res.Err != nil {
		w.progress.Emit(ProgressEvent{State: state, Status: ProgressFailed, Message: res.Err.Error()})
		return fmt.Sprintf("Error calling capability %q: %v", res.Capability, res.Err)
	}
	w.progress.Emit(ProgressEvent{State: state, Status: ProgressComplete})
	return res.Text
}

// fetchInstruction builds the natural-language task for the fetch
// capability. The structured parameters travel alongside in a data part.
func fetchInstruction(req Request) string {
	instr := fmt.Sprintf(
		"Retrieve %s regulations published in the last %d days and list them with document numbers, publication dates, titles, and URLs.",
		req.Agency, req.DaysBack)
	if req.Prompt != "" {
		instr += "\n\nUser request: " + req.Prompt
	}
	return instr
}

// compareInstruction builds the natural-language task for the comparator
// capability.
func compareInstruction(req Request) string {
	instr := fmt.Sprintf(
		"Compare %s regulations from the last %d days against the previous %d-day window; report counts by type, net change, and newly introduced rules.",
		req.Agency, req.DaysBack, req.DaysBack)
	if req.Prompt != "" {
		instr += "\n\nUser request: " + req.Prompt
	}
	return instr
}
