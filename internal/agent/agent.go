// Package agent hosts the capability agents that the orchestration
// workflow reaches over A2A: the document-fetch agent and the window
// comparator agent.
package agent

import (
	"context"

	"github.com/complianceops/regwatch/internal/a2a"
)

// Agent is the interface that all capability agents implement.
type Agent interface {
	// Card returns the agent's A2A Agent Card.
	Card() a2a.AgentCard

	// HandleTask processes an A2A task and returns the completed task.
	HandleTask(ctx context.Context, task a2a.Task, msg a2a.Message) (*a2a.Task, error)

	// Start launches the agent's HTTP server on the given address.
	Start(ctx context.Context, addr string) error

	// Stop gracefully shuts down the agent.
	Stop(ctx context.Context) error

	// Addr returns the bound listen address once started.
	Addr() string
}

// Capability names the independently reachable units of work. These are
// the stable identifiers the delegate router resolves to endpoints.
type Capability string

const (
	CapabilityFetch      Capability = "document-fetch"
	CapabilityComparator Capability = "comparator"
)

// Default listen ports for the two capability agents.
const (
	DefaultFetchPort      = 8001
	DefaultComparatorPort = 8002
)
