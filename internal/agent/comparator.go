package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/compare"
	"github.com/complianceops/regwatch/internal/fedreg"
)

// ComparatorAgent is the capability agent that compares the current
// look-back window against the previous equal-length window.
type ComparatorAgent struct {
	*BaseAgent

	comparator *compare.Comparator
	now        func() time.Time
}

// ComparatorAgentOption configures a ComparatorAgent.
type ComparatorAgentOption func(*ComparatorAgent)

// WithComparatorClock overrides the agent's notion of "today". Used by tests.
func WithComparatorClock(now func() time.Time) ComparatorAgentOption {
	return func(a *ComparatorAgent) { a.now = now }
}

// NewComparatorAgent creates a ComparatorAgent backed by the given
// document fetcher.
func NewComparatorAgent(fetcher fedreg.Fetcher, opts ...ComparatorAgentOption) *ComparatorAgent {
	ca := &ComparatorAgent{
		comparator: compare.NewComparator(fetcher),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ca)
	}

	card := a2a.AgentCard{
		Name:        string(CapabilityComparator),
		Description: "Compares HHS/CMS rules published in the last N days against the previous N-day window, reporting counts and newly introduced rules.",
		Version:     "dev",
		Skills: []a2a.AgentSkill{
			{
				ID:          "compare-regulation-changes",
				Name:        "Compare Regulation Changes",
				Description: "Window-over-window diff of published rules: per-type counts, net change, and newly appeared documents",
				Tags:        []string{"regulations", "comparison", "diff"},
			},
		},
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"text/plain"},
	}

	ca.BaseAgent = NewBaseAgent(card, ca.process)
	return ca
}

// process handles one comparison task. As with the fetch agent, upstream
// failures are rendered into the artifact text so the caller sees a single
// descriptive error string instead of a partial comparison.
func (a *ComparatorAgent) process(ctx context.Context, task *a2a.Task, msg a2a.Message) ([]a2a.Artifact, error) {
	agency, daysBack := ParamsFromMessage(msg).Normalize()

	var text string
	result, err := a.comparator.Compare(ctx, compare.Request{Agency: agency, DaysBack: daysBack}, a.now())
	if err != nil {
		var upstream *fedreg.UpstreamError
		if !errors.As(err, &upstream) {
			return nil, err
		}
		text = fmt.Sprintf("Error calling Federal Register API in comparator agent: %v", upstream.Err)
	} else {
		text = compare.Render(result)
	}

	return []a2a.Artifact{
		{
			ArtifactID: a2a.NewTaskID(),
			Name:       "regulation-comparison",
			Parts:      []a2a.Part{a2a.TextPart(text)},
		},
	}, nil
}
