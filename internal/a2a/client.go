package a2a

import "context"

// Client is the interface for an A2A client that sends tasks to agents.
// A delegate invocation is one blocking SendMessage round trip; there is
// no streaming surface.
type Client interface {
	// SendMessage sends a message to an agent and returns the task.
	// In blocking mode the call returns once the task reaches a
	// terminal state.
	SendMessage(ctx context.Context, endpoint string, req SendMessageRequest) (*Task, error)

	// GetTask retrieves a task by ID from a specific agent.
	GetTask(ctx context.Context, endpoint string, req GetTaskRequest) (*Task, error)

	// DiscoverAgent fetches the Agent Card from the well-known URI.
	DiscoverAgent(ctx context.Context, baseURL string) (*AgentCard, error)
}
