package mcptools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/complianceops/regwatch/internal/agent"
	"github.com/complianceops/regwatch/internal/compare"
	"github.com/complianceops/regwatch/internal/fedreg"
)

// RegService holds the document sources used by the MCP tool handlers.
// The fetch and compare tools use separate fetchers because they request
// different page sizes from the upstream API.
type RegService struct {
	fetchSource   fedreg.Fetcher
	compareSource fedreg.Fetcher
	now           func() time.Time
}

// NewRegService creates a RegService over the given document sources.
func NewRegService(fetchSource, compareSource fedreg.Fetcher) *RegService {
	return &RegService{
		fetchSource:   fetchSource,
		compareSource: compareSource,
		now:           time.Now,
	}
}

// SetClock overrides the service's notion of "today". Used by tests.
func (s *RegService) SetClock(now func() time.Time) {
	s.now = now
}

// normalize applies the shared parameter defaults: unknown agency falls
// back to BOTH, zero days to the default window, negatives to one day.
func normalize(agencyStr string, daysBack int) (fedreg.Agency, int) {
	agency := fedreg.ParseAgency(agencyStr)
	if daysBack == 0 {
		daysBack = agent.DefaultDaysBack
	}
	if daysBack < 0 {
		daysBack = 1
	}
	return agency, daysBack
}

// FetchRecent lists the rules published in the look-back window.
func (s *RegService) FetchRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchRecentInput,
) (*mcp.CallToolResult, FetchRecentOutput, error) {
	agency, daysBack := normalize(input.Agency, input.DaysBack)

	today := s.now()
	window := fedreg.Window(today.AddDate(0, 0, -daysBack), today)

	docs, err := s.fetchSource.Fetch(ctx, agency, window)
	if err != nil {
		return nil, FetchRecentOutput{}, err
	}

	return nil, FetchRecentOutput{
		Report: fedreg.RenderRecent(agency, daysBack, window, docs),
		Count:  len(docs),
	}, nil
}

// CompareChanges diffs the current window against the previous one.
func (s *RegService) CompareChanges(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareChangesInput,
) (*mcp.CallToolResult, CompareChangesOutput, error) {
	agency, daysBack := normalize(input.Agency, input.DaysBack)

	res, err := compare.NewComparator(s.compareSource).Compare(ctx, compare.Request{
		Agency:   agency,
		DaysBack: daysBack,
	}, s.now())
	if err != nil {
		return nil, CompareChangesOutput{}, err
	}

	return nil, CompareChangesOutput{
		Report:    compare.Render(res),
		NewDocs:   len(res.NewDocs),
		NetChange: res.NetChange(),
	}, nil
}
