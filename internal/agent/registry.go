package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/complianceops/regwatch/internal/fedreg"
)

// Factory is a constructor that creates an Agent.
type Factory func() Agent

// Registry maps capability names to their factory constructors and manages
// the lifecycle of spawned agents.
type Registry struct {
	mu        sync.Mutex
	factories map[Capability]Factory
	spawned   []Agent
}

// NewRegistry creates a Registry pre-registered with both capability
// agents. fetchSource backs the raw-fetch agent and compareSource backs
// the comparator; they are separate clients because the two capabilities
// request different page sizes against the same upstream.
func NewRegistry(fetchSource, compareSource fedreg.Fetcher) *Registry {
	r := &Registry{
		factories: make(map[Capability]Factory),
	}
	r.factories[CapabilityFetch] = func() Agent { return NewFetchAgent(fetchSource) }
	r.factories[CapabilityComparator] = func() Agent { return NewComparatorAgent(compareSource) }
	return r
}

// Register replaces the factory for a capability. Used by tests to inject
// agents with fixed clocks.
func (r *Registry) Register(capability Capability, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[capability] = factory
}

// Spawn creates a single agent by capability using the registered factory.
func (r *Registry) Spawn(capability Capability) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.factories[capability]
	if !ok {
		return nil, fmt.Errorf("no factory registered for capability %q", capability)
	}
	ag := factory()
	r.spawned = append(r.spawned, ag)
	return ag, nil
}

// SpawnAll creates both capability agents, binds each to its address from
// addrs, and starts their HTTP servers. On any failure, agents that were
// already started are stopped in reverse order.
func (r *Registry) SpawnAll(ctx context.Context, addrs map[Capability]string) (map[Capability]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Deterministic start order.
	capabilities := []Capability{CapabilityFetch, CapabilityComparator}

	agents := make(map[Capability]Agent, len(capabilities))
	var started []Agent

	stopStarted := func() {
		for j := len(started) - 1; j >= 0; j-- {
			_ = started[j].Stop(ctx)
		}
	}

	for _, capability := range capabilities {
		factory, ok := r.factories[capability]
		if !ok {
			stopStarted()
			return nil, fmt.Errorf("no factory registered for capability %q", capability)
		}

		addr, ok := addrs[capability]
		if !ok {
			stopStarted()
			return nil, fmt.Errorf("no listen address for capability %q", capability)
		}

		ag := factory()
		if err := ag.Start(ctx, addr); err != nil {
			stopStarted()
			return nil, fmt.Errorf("start agent %q on %s: %w", capability, addr, err)
		}

		agents[capability] = ag
		started = append(started, ag)
	}

	r.spawned = append(r.spawned, started...)
	return agents, nil
}

// StopAll gracefully stops all spawned agents in reverse order.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for i := len(r.spawned) - 1; i >= 0; i-- {
		if err := r.spawned[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.spawned = nil
	return firstErr
}
