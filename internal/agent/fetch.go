package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/fedreg"
)

// FetchAgent is the capability agent that fetches recent rule-documents
// from the Federal Register for a single look-back window. It embeds
// BaseAgent for A2A protocol handling.
type FetchAgent struct {
	*BaseAgent

	fetcher fedreg.Fetcher
	now     func() time.Time
}

// FetchAgentOption configures a FetchAgent.
type FetchAgentOption func(*FetchAgent)

// WithFetchClock overrides the agent's notion of "today". Used by tests.
func WithFetchClock(now func() time.Time) FetchAgentOption {
	return func(a *FetchAgent) { a.now = now }
}

// NewFetchAgent creates a FetchAgent backed by the given document fetcher.
func NewFetchAgent(fetcher fedreg.Fetcher, opts ...FetchAgentOption) *FetchAgent {
	fa := &FetchAgent{
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(fa)
	}

	card := a2a.AgentCard{
		Name:        string(CapabilityFetch),
		Description: "Fetches recent HHS and CMS rules from the Federal Register for a look-back window and reports them as text.",
		Version:     "dev",
		Skills: []a2a.AgentSkill{
			{
				ID:          "fetch-recent-regulations",
				Name:        "Fetch Recent Regulations",
				Description: "Retrieve final and proposed rules published by HHS and/or CMS in the last N days",
				Tags:        []string{"regulations", "federal-register", "fetch"},
			},
		},
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"text/plain"},
	}

	fa.BaseAgent = NewBaseAgent(card, fa.process)
	return fa
}

// process handles one fetch task: it resolves the window from the task
// parameters, queries the document source, and renders the result as a
// text artifact. Upstream failures become error text in the artifact, not
// a failed task, so the owning workflow degrades gracefully.
func (a *FetchAgent) process(ctx context.Context, task *a2a.Task, msg a2a.Message) ([]a2a.Artifact, error) {
	agency, daysBack := ParamsFromMessage(msg).Normalize()

	today := a.now()
	window := fedreg.Window(today.AddDate(0, 0, -daysBack), today)

	var text string
	docs, err := a.fetcher.Fetch(ctx, agency, window)
	if err != nil {
		var upstream *fedreg.UpstreamError
		if !errors.As(err, &upstream) {
			return nil, err
		}
		text = fmt.Sprintf("Error calling Federal Register API: %v", upstream.Err)
	} else {
		text = fedreg.RenderRecent(agency, daysBack, window, docs)
	}

	return []a2a.Artifact{
		{
			ArtifactID: a2a.NewTaskID(),
			Name:       "recent-regulations",
			Parts:      []a2a.Part{a2a.TextPart(text)},
		},
	}, nil
}
