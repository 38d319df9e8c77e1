// Package compare implements the window-over-window regulatory change
// comparison: two disjoint, equal-length publication-date windows are
// fetched independently and diffed by document identifier.
package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/complianceops/regwatch/internal/fedreg"
)

// Request describes one comparison: which agency selector to query and how
// many days each window spans.
type Request struct {
	Agency   fedreg.Agency
	DaysBack int
}

// normalized applies the input invariants: an unknown agency selector
// falls back to BOTH, and DaysBack <= 0 is coerced to 1 before any date
// arithmetic. Requests are never rejected for out-of-range values.
func (r Request) normalized() Request {
	r.Agency = fedreg.ParseAgency(string(r.Agency))
	if r.DaysBack <= 0 {
		r.DaysBack = 1
	}
	return r
}

// Windows computes the current and previous comparison windows for a
// reference day. Both windows are inclusive on both ends and span the same
// number of days; the previous window ends exactly one day before the
// current one begins, so they are contiguous and non-overlapping by
// construction.
func Windows(today time.Time, daysBack int) (current, previous fedreg.DateWindow) {
	if daysBack <= 0 {
		daysBack = 1
	}

	currentStart := today.AddDate(0, 0, -daysBack)
	current = fedreg.Window(currentStart, today)

	previousEnd := currentStart.AddDate(0, 0, -1)
	previousStart := previousEnd.AddDate(0, 0, -daysBack)
	previous = fedreg.Window(previousStart, previousEnd)

	return current, previous
}

// Result is the structured outcome of one comparison. It is derived,
// recomputed on every call, and never persisted.
type Result struct {
	Agency         fedreg.Agency
	CurrentWindow  fedreg.DateWindow
	PreviousWindow fedreg.DateWindow
	CurrentDocs    []fedreg.Document
	PreviousDocs   []fedreg.Document

	// NewDocs holds the current-window documents whose identifier does
	// not appear in the previous window, in current-window order.
	NewDocs []fedreg.Document

	CountsCurrent  map[fedreg.RuleType]int
	CountsPrevious map[fedreg.RuleType]int
}

// NetChange is the difference in total document count between the two
// windows.
func (r *Result) NetChange() int {
	return len(r.CurrentDocs) - len(r.PreviousDocs)
}

// Comparator drives the two window fetches and computes the diff.
type Comparator struct {
	fetcher fedreg.Fetcher
}

// NewComparator creates a Comparator backed by the given document fetcher.
func NewComparator(fetcher fedreg.Fetcher) *Comparator {
	return &Comparator{fetcher: fetcher}
}

// Compare fetches both windows and produces the structured diff. A failure
// in either fetch aborts the whole comparison; partial results are never
// reported as if complete.
func (c *Comparator) Compare(ctx context.Context, req Request, today time.Time) (*Result, error) {
	req = req.normalized()

	currentWindow, previousWindow := Windows(today, req.DaysBack)

	currentDocs, err := c.fetcher.Fetch(ctx, req.Agency, currentWindow)
	if err != nil {
		return nil, fmt.Errorf("compare: current window: %w", err)
	}

	previousDocs, err := c.fetcher.Fetch(ctx, req.Agency, previousWindow)
	if err != nil {
		return nil, fmt.Errorf("compare: previous window: %w", err)
	}

	return &Result{
		Agency:         req.Agency,
		CurrentWindow:  currentWindow,
		PreviousWindow: previousWindow,
		CurrentDocs:    currentDocs,
		PreviousDocs:   previousDocs,
		NewDocs:        newDocuments(currentDocs, previousDocs),
		CountsCurrent:  countTypes(currentDocs),
		CountsPrevious: countTypes(previousDocs),
	}, nil
}

// newDocuments returns the current-window documents whose number is absent
// from the previous window. The diff is by identifier, not full-record
// equality: a resurfaced document number with a changed title or URL is
// not "new".
func newDocuments(current, previous []fedreg.Document) []fedreg.Document {
	previousNums := make(map[string]bool, len(previous))
	for _, d := range previous {
		previousNums[d.Number] = true
	}

	fresh := make([]fedreg.Document, 0, len(current))
	for _, d := range current {
		if !previousNums[d.Number] {
			fresh = append(fresh, d)
		}
	}
	return fresh
}

// countTypes tallies documents per rule type. All three buckets are always
// present so that zero counts render explicitly; unrecognized types land
// in OTHER, never dropped.
func countTypes(docs []fedreg.Document) map[fedreg.RuleType]int {
	counts := map[fedreg.RuleType]int{
		fedreg.RuleTypeFinal:    0,
		fedreg.RuleTypeProposed: 0,
		fedreg.RuleTypeOther:    0,
	}
	for _, d := range docs {
		counts[fedreg.ClassifyType(d.Type)]++
	}
	return counts
}
