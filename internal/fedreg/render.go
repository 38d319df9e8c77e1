package fedreg

import (
	"fmt"
	"strings"
)

// MaxListedDocuments caps how many documents a rendered listing
// enumerates. This is a presentation limit only; counts reported
// elsewhere always cover the full set.
const MaxListedDocuments = 10

// FormatDocument renders one document as a multi-line list entry.
func FormatDocument(d Document) string {
	return fmt.Sprintf("- [%s] (%s) %s\n  Title: %s\n  URL: %s",
		d.PublicationDate, d.Type, d.Number, strings.TrimSpace(d.Title), d.URL)
}

// RenderRecent produces the human-readable summary of a raw fetch:
// a header naming the agency and look-back span, up to MaxListedDocuments
// entries, and an explicit trailer for anything beyond the cap.
func RenderRecent(agency Agency, daysBack int, window DateWindow, docs []Document) string {
	since := window.Start.Format("2006-01-02")

	if len(docs) == 0 {
		return fmt.Sprintf("No %s regulations found in the last %d days (since %s).",
			agency, daysBack, since)
	}

	lines := []string{
		fmt.Sprintf("Recent %s regulations in the last %d days (since %s):", agency, daysBack, since),
		"",
	}

	for i, d := range docs {
		if i >= MaxListedDocuments {
			break
		}
		lines = append(lines, FormatDocument(d))
	}

	if len(docs) > MaxListedDocuments {
		lines = append(lines, "", fmt.Sprintf("...and %d more document(s).", len(docs)-MaxListedDocuments))
	}

	return strings.Join(lines, "\n")
}
