package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complianceops/regwatch/internal/a2a"
)

func newTestRegistry() *Registry {
	clock := func() time.Time { return fixedToday }
	r := NewRegistry(&stubFetcher{}, &windowedFetcher{})
	r.Register(CapabilityFetch, func() Agent {
		return NewFetchAgent(&stubFetcher{}, WithFetchClock(clock))
	})
	r.Register(CapabilityComparator, func() Agent {
		return NewComparatorAgent(&windowedFetcher{}, WithComparatorClock(clock))
	})
	return r
}

func TestRegistry_Spawn(t *testing.T) {
	r := newTestRegistry()

	ag, err := r.Spawn(CapabilityFetch)
	require.NoError(t, err)
	assert.Equal(t, "document-fetch", ag.Card().Name)
}

func TestRegistry_SpawnUnknownCapability(t *testing.T) {
	r := newTestRegistry()

	ag, err := r.Spawn(Capability("translator"))
	require.Error(t, err)
	assert.Nil(t, ag)
	assert.Contains(t, err.Error(), "no factory registered")
}

func TestRegistry_SpawnAllAndDiscover(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	agents, err := r.SpawnAll(ctx, map[Capability]string{
		CapabilityFetch:      "127.0.0.1:0",
		CapabilityComparator: "127.0.0.1:0",
	})
	require.NoError(t, err)
	defer r.StopAll(ctx)

	require.Len(t, agents, 2)

	// Each spawned agent serves its card at the well-known path.
	client := a2a.NewHTTPClient()
	for capability, ag := range agents {
		assert.NotEmpty(t, ag.Addr())

		card, err := client.DiscoverAgent(ctx, "http://"+ag.Addr())
		require.NoError(t, err)
		assert.Equal(t, string(capability), card.Name)
	}
}

func TestRegistry_SpawnAllMissingAddress(t *testing.T) {
	r := newTestRegistry()

	agents, err := r.SpawnAll(context.Background(), map[Capability]string{
		CapabilityFetch: "127.0.0.1:0",
	})
	require.Error(t, err)
	assert.Nil(t, agents)
	assert.Contains(t, err.Error(), "no listen address")
}

func TestRegistry_StopAllIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	_, err := r.SpawnAll(ctx, map[Capability]string{
		CapabilityFetch:      "127.0.0.1:0",
		CapabilityComparator: "127.0.0.1:0",
	})
	require.NoError(t, err)

	require.NoError(t, r.StopAll(ctx))
	require.NoError(t, r.StopAll(ctx), "second StopAll is a no-op")
}
