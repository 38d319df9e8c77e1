package compare

import (
	"fmt"
	"strings"

	"github.com/complianceops/regwatch/internal/fedreg"
)

// Render produces the human-readable comparator analysis. Empty windows
// render explicit zero counts rather than omitting their lines, and the
// new-document listing is capped at fedreg.MaxListedDocuments entries
// with a "...and N more" trailer.
func Render(res *Result) string {
	lines := []string{
		fmt.Sprintf("Comparator analysis for %s regulations.", res.Agency),
		"",
		fmt.Sprintf("Current period:   %s (inclusive)", res.CurrentWindow),
		fmt.Sprintf("Previous period:  %s (inclusive)", res.PreviousWindow),
		"",
		fmt.Sprintf("Current period:  %d document(s) %s", len(res.CurrentDocs), formatCounts(res.CountsCurrent)),
		fmt.Sprintf("Previous period: %d document(s) %s", len(res.PreviousDocs), formatCounts(res.CountsPrevious)),
		"",
		fmt.Sprintf("Net change in total docs: %+d", res.NetChange()),
		fmt.Sprintf("New document(s) in current period that did not appear in the previous period: %d", len(res.NewDocs)),
		"",
	}

	if len(res.NewDocs) == 0 {
		lines = append(lines, "No documents in the current period are new relative to the previous period.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "Newly introduced document(s) in the current period:")
	for i, d := range res.NewDocs {
		if i >= fedreg.MaxListedDocuments {
			break
		}
		lines = append(lines, fedreg.FormatDocument(d))
	}

	if extra := len(res.NewDocs) - fedreg.MaxListedDocuments; extra > 0 {
		lines = append(lines, "", fmt.Sprintf("...and %d more new document(s) in the current period.", extra))
	}

	return strings.Join(lines, "\n")
}

// formatCounts renders the per-type tally as a parenthesized breakdown.
func formatCounts(counts map[fedreg.RuleType]int) string {
	return fmt.Sprintf("(Final rules: %d, Proposed rules: %d, Other: %d)",
		counts[fedreg.RuleTypeFinal],
		counts[fedreg.RuleTypeProposed],
		counts[fedreg.RuleTypeOther])
}
