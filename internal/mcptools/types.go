// Package mcptools exposes the Federal Register tools over the Model
// Context Protocol so coding agents and chat clients can call them
// directly, without going through the A2A workflow.
package mcptools

// FetchRecentInput is the input to the fetch_recent_regulations MCP tool.
type FetchRecentInput struct {
	Agency   string `json:"agency,omitempty" jsonschema:"agency to query: HHS, CMS, or BOTH (default: BOTH)"`
	DaysBack int    `json:"daysBack,omitempty" jsonschema:"lookback window in days (default: 30)"`
}

// FetchRecentOutput is the result of the fetch_recent_regulations MCP tool.
type FetchRecentOutput struct {
	Report string `json:"report"`
	Count  int    `json:"count"`
}

// CompareChangesInput is the input to the compare_regulation_changes MCP tool.
type CompareChangesInput struct {
	Agency   string `json:"agency,omitempty" jsonschema:"agency to query: HHS, CMS, or BOTH (default: BOTH)"`
	DaysBack int    `json:"daysBack,omitempty" jsonschema:"window length in days; the current window is compared against the previous window of the same length (default: 30)"`
}

// CompareChangesOutput is the result of the compare_regulation_changes MCP tool.
type CompareChangesOutput struct {
	Report    string `json:"report"`
	NewDocs   int    `json:"newDocs"`
	NetChange int    `json:"netChange"`
}
