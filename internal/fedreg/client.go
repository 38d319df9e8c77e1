// Package fedreg fetches published rule-documents from the Federal
// Register documents API.
package fedreg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/complianceops/regwatch/internal/retry"
)

// DefaultBaseURL is the Federal Register documents-search endpoint.
const DefaultBaseURL = "https://www.federalregister.gov/api/v1/documents.json"

// DefaultPerPage is the page size requested when none is configured. The
// client never auto-paginates, so the page size must be large enough to
// capture a full window in one call.
const DefaultPerPage = 1000

// Fetcher is the document-source contract consumed by the comparator and
// the fetch agent.
type Fetcher interface {
	Fetch(ctx context.Context, agency Agency, window DateWindow) ([]Document, error)
}

// Compile-time interface check.
var _ Fetcher = (*Client)(nil)

// Client queries the Federal Register documents API.
type Client struct {
	baseURL string
	http    *http.Client
	perPage int
	slugs   map[Agency]string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the documents endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPerPage sets the page size requested from the API.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry wraps the client transport with bounded retry on transient
// HTTP status codes.
func WithRetry(policy retry.Policy) Option {
	return func(c *Client) {
		c.http.Transport = retry.NewTransport(c.http.Transport, policy)
	}
}

// WithAgencySlugs overrides the agency → slug mapping.
func WithAgencySlugs(slugs map[Agency]string) Option {
	return func(c *Client) {
		if len(slugs) > 0 {
			c.slugs = slugs
		}
	}
}

// NewClient creates a Federal Register client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		perPage: DefaultPerPage,
		slugs:   DefaultAgencySlugs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// slugsFor resolves the agency selector to one or two slugs. BOTH is a
// single query carrying both agency filters, not two requests.
func (c *Client) slugsFor(agency Agency) []string {
	switch agency {
	case AgencyHHS:
		return []string{c.slugs[AgencyHHS]}
	case AgencyCMS:
		return []string{c.slugs[AgencyCMS]}
	default:
		return []string{c.slugs[AgencyHHS], c.slugs[AgencyCMS]}
	}
}

// buildQuery assembles the documents-search query parameters. Only final
// and proposed rules are requested; anything else the API returns anyway
// is retained and classified OTHER.
func (c *Client) buildQuery(slugs []string, window DateWindow) url.Values {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("order", "newest")
	q.Add("conditions[type][]", upstreamTypeRule)
	q.Add("conditions[type][]", upstreamTypeProposed)
	q.Set("conditions[publication_date][gte]", window.Start.Format("2006-01-02"))
	q.Set("conditions[publication_date][lte]", window.End.Format("2006-01-02"))
	for _, field := range []string{"title", "document_number", "publication_date", "type", "html_url"} {
		q.Add("fields[]", field)
	}
	for _, slug := range slugs {
		q.Add("conditions[agencies][]", slug)
	}
	return q
}

// documentsResponse mirrors the relevant slice of the API response. A
// missing results key means zero documents, not an error.
type documentsResponse struct {
	Results []Document `json:"results"`
}

// Fetch returns the rule-documents published in the window for the given
// agency selector. Network, HTTP, and decode failures surface as a typed
// *UpstreamError so callers can convert them to user-visible error text
// instead of aborting the workflow.
func (c *Client) Fetch(ctx context.Context, agency Agency, window DateWindow) ([]Document, error) {
	q := c.buildQuery(c.slugsFor(agency), window)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: "get documents", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &UpstreamError{
			Op:     "get documents",
			Status: resp.StatusCode,
			Err:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed documentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &UpstreamError{Op: "decode documents", Err: err}
	}

	docs := parsed.Results
	for i := range docs {
		docs[i].RuleType = ClassifyType(docs[i].Type)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// UpstreamError is a document-source failure: network, HTTP status, or
// malformed JSON. It is recovered locally by converting to a descriptive
// error string; it is never propagated as an unhandled fault.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fedreg: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
