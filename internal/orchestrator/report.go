package orchestrator

import (
	"fmt"
	"strings"
)

// Report section headings, always emitted in this order.
const (
	headingRecent = "## Recent Rules"
	headingChange = "## Change vs Previous Period"
	headingWhy    = "## Why This Matters"
)

// noDataText is emitted under a heading whose delegate produced nothing.
// Sections are never silently omitted.
const noDataText = "No data available for this section."

// Synthesize merges the two delegate outputs and a deterministic impact
// narrative into one report.
func Synthesize(req Request, fetchSection, comparisonSection string) *Report {
	return &Report{
		FetchSection:      fetchSection,
		ComparisonSection: comparisonSection,
		NarrativeSection:  buildNarrative(req),
	}
}

// buildNarrative produces the why-it-matters commentary. It is a fixed
// template over the request fields: no model call, no hidden randomness,
// so two runs over identical inputs render identical reports.
func buildNarrative(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Regulatory activity for %s over the last %d days can ripple through several teams:\n\n",
		req.Agency, req.DaysBack)
	b.WriteString("- Compliance / privacy: final rules can change obligations, reporting deadlines, and audit scope as of their effective dates.\n")
	b.WriteString("- Security / IT: new data-handling or interoperability requirements may call for access-control and logging changes.\n")
	b.WriteString("- Engineering / product: proposed rules signal upcoming work; final rules set the dates to plan releases against.\n\n")
	b.WriteString("Review the sections above and route anything relevant to the owning team.")
	return b.String()
}

// Render serializes the report to the single text blob handed to the
// notification sink. Every heading is always present; an empty section
// renders an explicit no-data statement.
func (r *Report) Render() string {
	var b strings.Builder

	writeSection := func(heading, content string) {
		b.WriteString(heading)
		b.WriteString("\n\n")
		if strings.TrimSpace(content) == "" {
			content = noDataText
		}
		b.WriteString(strings.TrimRight(content, "\n"))
		b.WriteString("\n\n")
	}

	writeSection(headingRecent, r.FetchSection)
	writeSection(headingChange, r.ComparisonSection)
	writeSection(headingWhy, r.NarrativeSection)

	return strings.TrimRight(b.String(), "\n") + "\n"
}
