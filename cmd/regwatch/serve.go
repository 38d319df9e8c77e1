package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/complianceops/regwatch/internal/agent"
	"github.com/complianceops/regwatch/internal/fedreg"
	"github.com/complianceops/regwatch/internal/mcptools"
	"github.com/complianceops/regwatch/internal/retry"
)

// defaultMCPAddr is where -serve-mcp listens.
const defaultMCPAddr = "127.0.0.1:8080"

// runServe starts one or both capability agents as long-running HTTP
// servers and blocks until interrupted.
func runServe(which string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := agent.NewRegistry(
		fedreg.NewClient(fedreg.WithPerPage(fetchPerPage), fedreg.WithRetry(retry.DefaultPolicy())),
		fedreg.NewClient(fedreg.WithRetry(retry.DefaultPolicy())),
	)

	addrs := map[agent.Capability]string{}
	switch which {
	case "fetch":
		addrs[agent.CapabilityFetch] = listenAddr(agent.DefaultFetchPort)
	case "comparator":
		addrs[agent.CapabilityComparator] = listenAddr(agent.DefaultComparatorPort)
	case "all":
		addrs[agent.CapabilityFetch] = listenAddr(agent.DefaultFetchPort)
		addrs[agent.CapabilityComparator] = listenAddr(agent.DefaultComparatorPort)
	default:
		return fmt.Errorf("unknown serve target %q (want fetch, comparator, or all)", which)
	}

	defer registry.StopAll(context.Background())

	agents, err := spawnSubset(ctx, registry, addrs)
	if err != nil {
		return err
	}

	for capability, ag := range agents {
		fmt.Printf("%s agent listening on %s\n", capability, ag.Addr())
	}

	<-ctx.Done()
	return nil
}

// spawnSubset starts only the agents named in addrs. SpawnAll always
// starts both capabilities, so single-agent serving goes through Spawn.
func spawnSubset(ctx context.Context, registry *agent.Registry, addrs map[agent.Capability]string) (map[agent.Capability]agent.Agent, error) {
	agents := make(map[agent.Capability]agent.Agent, len(addrs))
	for _, capability := range []agent.Capability{agent.CapabilityFetch, agent.CapabilityComparator} {
		addr, ok := addrs[capability]
		if !ok {
			continue
		}
		ag, err := registry.Spawn(capability)
		if err != nil {
			return nil, err
		}
		if err := ag.Start(ctx, addr); err != nil {
			return nil, fmt.Errorf("start agent %q on %s: %w", capability, addr, err)
		}
		agents[capability] = ag
	}
	return agents, nil
}

func listenAddr(port int) string {
	return "0.0.0.0:" + strconv.Itoa(port)
}

// runServeMCP exposes the Federal Register tools over MCP.
func runServeMCP() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := mcptools.NewRegService(
		fedreg.NewClient(fedreg.WithPerPage(fetchPerPage), fedreg.WithRetry(retry.DefaultPolicy())),
		fedreg.NewClient(fedreg.WithRetry(retry.DefaultPolicy())),
	)

	fmt.Printf("MCP server listening on %s\n", defaultMCPAddr)
	return mcptools.RunMCPServer(ctx, svc, defaultMCPAddr)
}
