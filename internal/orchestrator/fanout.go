package orchestrator

import (
	"context"

	"github.com/complianceops/regwatch/internal/agent"
	"golang.org/x/sync/errgroup"
)

// DelegateCall describes a single unit of work to send to a capability.
type DelegateCall struct {
	Capability  agent.Capability
	Instruction string
	Params      any
}

// DelegateResult holds the outcome of a single DelegateCall.
type DelegateResult struct {
	Capability agent.Capability
	Text       string
	Err        error
}

// FanOut dispatches delegate calls in parallel. Failures are independent:
// one delegate failing never cancels the others, because every failure is
// degraded into an inline report note rather than aborting the run.
type FanOut struct {
	invoker Invoker
}

// NewFanOut creates a FanOut that dispatches calls via invoker.
func NewFanOut(invoker Invoker) *FanOut {
	return &FanOut{invoker: invoker}
}

// Run dispatches every call in parallel and returns one result channel per
// call, in call order. Each channel delivers exactly one result. Callers
// can consume the channels in order to preserve the fetch-before-compare
// output guarantee while the calls themselves overlap.
func (f *FanOut) Run(ctx context.Context, calls []DelegateCall) []<-chan DelegateResult {
	channels := make([]<-chan DelegateResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)

	for i, call := range calls {
		ch := make(chan DelegateResult, 1)
		channels[i] = ch

		g.Go(func() error {
			text, err := f.invoker.Invoke(gctx, call.Capability, call.Instruction, call.Params)
			ch <- DelegateResult{
				Capability: call.Capability,
				Text:       text,
				Err:        err,
			}
			// Errors are carried in the result, never returned, so a
			// failing delegate does not cancel its siblings.
			return nil
		})
	}

	// Reclaim the group once all calls finish.
	go g.Wait()

	return channels
}
