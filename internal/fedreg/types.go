package fedreg

import (
	"strings"
	"time"
)

// Agency selects which agency's documents a query covers.
type Agency string

const (
	AgencyHHS  Agency = "HHS"
	AgencyCMS  Agency = "CMS"
	AgencyBoth Agency = "BOTH"
)

// ParseAgency normalizes a free-form agency string. Unrecognized values
// fall back to AgencyBoth rather than failing the request.
func ParseAgency(s string) Agency {
	switch Agency(strings.ToUpper(strings.TrimSpace(s))) {
	case AgencyHHS:
		return AgencyHHS
	case AgencyCMS:
		return AgencyCMS
	default:
		return AgencyBoth
	}
}

// DefaultAgencySlugs maps agencies to their federalregister.gov slugs.
func DefaultAgencySlugs() map[Agency]string {
	return map[Agency]string{
		AgencyHHS: "health-and-human-services-department",
		AgencyCMS: "centers-for-medicare-medicaid-services",
	}
}

// RuleType is the classification of a published document.
type RuleType string

const (
	RuleTypeFinal    RuleType = "FINAL"
	RuleTypeProposed RuleType = "PROPOSED"
	RuleTypeOther    RuleType = "OTHER"
)

// Upstream document type codes requested from the API.
const (
	upstreamTypeRule     = "RULE"
	upstreamTypeProposed = "PRORULE"
)

// ClassifyType maps a raw upstream type string to a RuleType. Unknown or
// empty strings classify as OTHER; documents are never dropped for having
// an unrecognized type.
func ClassifyType(raw string) RuleType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case upstreamTypeRule:
		return RuleTypeFinal
	case upstreamTypeProposed:
		return RuleTypeProposed
	default:
		return RuleTypeOther
	}
}

// DateWindow is an inclusive publication-date range used to bound a
// document query. Start must not be after End.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Window constructs a DateWindow, swapping the bounds if they arrive
// reversed so the start <= end invariant always holds.
func Window(start, end time.Time) DateWindow {
	if start.After(end) {
		start, end = end, start
	}
	return DateWindow{Start: start, End: end}
}

// Days returns the span of the window in days (end - start).
func (w DateWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// String renders the window as "YYYY-MM-DD to YYYY-MM-DD".
func (w DateWindow) String() string {
	return w.Start.Format("2006-01-02") + " to " + w.End.Format("2006-01-02")
}

// Document is one published rule-document returned by the Federal Register.
// Identity is the document number; it is stable across re-fetches.
type Document struct {
	Number          string   `json:"document_number"`
	Title           string   `json:"title"`
	PublicationDate string   `json:"publication_date"`
	Type            string   `json:"type"`
	RuleType        RuleType `json:"-"`
	URL             string   `json:"html_url"`
}
