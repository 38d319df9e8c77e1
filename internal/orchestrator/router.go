package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/agent"
)

// Endpoints maps capability names to the base addresses where their
// agents can be discovered.
type Endpoints map[agent.Capability]string

// Invoker forwards a natural-language task plus structured parameters to
// a named capability and returns its text response. It is the single
// sanctioned path for the workflow to reach a remote capability.
type Invoker interface {
	Invoke(ctx context.Context, capability agent.Capability, instruction string, params any) (string, error)
}

// Compile-time interface check.
var _ Invoker = (*Router)(nil)

// Router resolves capability names to reachable endpoints via agent-card
// discovery and performs the delegate calls. Resolution happens once per
// capability and the handle is reused for the life of the owning workflow
// instance.
type Router struct {
	client    a2a.Client
	endpoints Endpoints

	mu       sync.Mutex
	resolved map[agent.Capability]string
}

// NewRouter creates a Router over the given client and endpoint registry.
// The registry is injected (not a process-wide singleton) so tests can
// supply fake capabilities.
func NewRouter(client a2a.Client, endpoints Endpoints) *Router {
	return &Router{
		client:    client,
		endpoints: endpoints,
		resolved:  make(map[agent.Capability]string),
	}
}

// Resolve returns the message endpoint for a capability, fetching the
// agent card on first use and caching the result.
func (r *Router) Resolve(ctx context.Context, capability agent.Capability) (string, error) {
	r.mu.Lock()
	if endpoint, ok := r.resolved[capability]; ok {
		r.mu.Unlock()
		return endpoint, nil
	}
	r.mu.Unlock()

	baseURL, ok := r.endpoints[capability]
	if !ok {
		return "", &RoutingError{Capability: capability, Err: fmt.Errorf("capability not registered")}
	}

	card, err := r.client.DiscoverAgent(ctx, baseURL)
	if err != nil {
		return "", &RoutingError{Capability: capability, Err: fmt.Errorf("discover agent at %s: %w", baseURL, err)}
	}

	// Prefer the endpoint declared on the card; fall back to the
	// registered base address.
	endpoint := strings.TrimRight(baseURL, "/")
	for _, iface := range card.Interfaces {
		if iface.URL != "" {
			endpoint = iface.URL
			break
		}
	}

	r.mu.Lock()
	r.resolved[capability] = endpoint
	r.mu.Unlock()

	return endpoint, nil
}

// Invoke performs one delegate round trip: instruction and parameters in,
// response text out. There is no streaming and no partial response.
func (r *Router) Invoke(ctx context.Context, capability agent.Capability, instruction string, params any) (string, error) {
	endpoint, err := r.Resolve(ctx, capability)
	if err != nil {
		return "", err
	}

	parts := []a2a.Part{a2a.TextPart(instruction)}
	if params != nil {
		dataPart, err := a2a.DataPart(params)
		if err != nil {
			return "", &RoutingError{Capability: capability, Err: fmt.Errorf("encode params: %w", err)}
		}
		parts = append(parts, dataPart)
	}

	req := a2a.SendMessageRequest{
		Message: a2a.Message{
			MessageID: a2a.NewTaskID(),
			Role:      a2a.RoleUser,
			Parts:     parts,
		},
		Configuration: &a2a.SendMessageConfig{Blocking: true},
	}

	task, err := r.client.SendMessage(ctx, endpoint, req)
	if err != nil {
		return "", &RoutingError{Capability: capability, Err: err}
	}

	if task.Status.State == a2a.TaskStateFailed {
		reason := "task failed"
		if task.Status.Message != nil {
			if text := textFromParts(task.Status.Message.Parts); text != "" {
				reason = text
			}
		}
		return "", &RoutingError{Capability: capability, Err: fmt.Errorf("%s", reason)}
	}

	return textFromArtifacts(task.Artifacts), nil
}

// textFromArtifacts concatenates text parts from all artifacts.
func textFromArtifacts(artifacts []a2a.Artifact) string {
	var texts []string
	for _, art := range artifacts {
		if text := textFromParts(art.Parts); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// textFromParts concatenates the text parts of a message or artifact.
func textFromParts(parts []a2a.Part) string {
	var texts []string
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// RoutingError is a delegate failure: the capability could not be
// resolved or did not respond. The owning workflow substitutes an inline
// error note and continues rather than aborting the whole report.
type RoutingError struct {
	Capability agent.Capability
	Err        error
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("router: capability %q: %v", e.Capability, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RoutingError) Unwrap() error {
	return e.Err
}
