package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewRegMCPServer creates an MCP server with the Federal Register tools
// registered.
func NewRegMCPServer(svc *RegService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "regwatch",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_recent_regulations",
		Description: "List HHS and CMS final and proposed rules published in the Federal Register over the last N days, with document numbers, publication dates, titles, and URLs.",
	}, svc.FetchRecent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_regulation_changes",
		Description: "Compare HHS/CMS rule activity in the last N days against the previous N-day window. Reports counts by rule type, net change, and documents that are new in the current window.",
	}, svc.CompareChanges)

	return server
}

// RunMCPServer starts an HTTP server exposing the Federal Register MCP
// tools at addr.
func RunMCPServer(ctx context.Context, svc *RegService, addr string) error {
	server := NewRegMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
