package fedreg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complianceops/regwatch/internal/retry"
)

// retryPolicyForTest is the default policy with millisecond delays.
func retryPolicyForTest() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.InitialDelay = time.Millisecond
	return policy
}

var testWindow = Window(
	time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
)

const sampleResponse = `{
	"count": 2,
	"results": [
		{
			"document_number": "2025-11111",
			"title": "Medicare Program; Hospital Payment Update",
			"publication_date": "2025-06-20",
			"type": "RULE",
			"html_url": "https://www.federalregister.gov/d/2025-11111"
		},
		{
			"document_number": "2025-22222",
			"title": "Proposed Interoperability Requirements",
			"publication_date": "2025-06-15",
			"type": "PRORULE",
			"html_url": "https://www.federalregister.gov/d/2025-22222"
		}
	]
}`

func TestClient_FetchHappyPath(t *testing.T) {
	var query url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	docs, err := client.Fetch(context.Background(), AgencyCMS, testWindow)

	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "2025-11111", docs[0].Number)
	assert.Equal(t, RuleTypeFinal, docs[0].RuleType)
	assert.Equal(t, "2025-22222", docs[1].Number)
	assert.Equal(t, RuleTypeProposed, docs[1].RuleType)

	// Query parameter contract with the upstream API.
	assert.Equal(t, "1000", query.Get("per_page"))
	assert.Equal(t, "newest", query.Get("order"))
	assert.Equal(t, "2025-06-01", query.Get("conditions[publication_date][gte]"))
	assert.Equal(t, "2025-06-30", query.Get("conditions[publication_date][lte]"))
	assert.ElementsMatch(t, []string{"RULE", "PRORULE"}, query["conditions[type][]"])
	assert.Equal(t, []string{"centers-for-medicare-medicaid-services"}, query["conditions[agencies][]"])
	assert.Contains(t, query["fields[]"], "document_number")
	assert.Contains(t, query["fields[]"], "html_url")
}

func TestClient_FetchBothAgenciesSingleQuery(t *testing.T) {
	var hits int
	var query url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		query = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	_, err := client.Fetch(context.Background(), AgencyBoth, testWindow)

	require.NoError(t, err)
	assert.Equal(t, 1, hits, "BOTH is one query with two agency filters, not two queries")
	assert.ElementsMatch(t, []string{
		"health-and-human-services-department",
		"centers-for-medicare-medicaid-services",
	}, query["conditions[agencies][]"])
}

func TestClient_FetchMissingResultsKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	docs, err := client.Fetch(context.Background(), AgencyHHS, testWindow)

	require.NoError(t, err, "a missing results key means zero documents, not an error")
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestClient_FetchHTTPErrorIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":"bad query"}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	docs, err := client.Fetch(context.Background(), AgencyHHS, testWindow)

	require.Error(t, err)
	assert.Nil(t, docs)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Contains(t, upstream.Error(), "HTTP 400")
}

func TestClient_FetchMalformedJSONIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	_, err := client.Fetch(context.Background(), AgencyHHS, testWindow)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "decode documents", upstream.Op)
}

func TestClient_FetchNetworkErrorIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed server: connection refused

	client := NewClient(WithBaseURL(ts.URL))
	_, err := client.Fetch(context.Background(), AgencyHHS, testWindow)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.NotNil(t, errors.Unwrap(upstream))
}

func TestClient_WithPerPage(t *testing.T) {
	var query url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL), WithPerPage(40))
	_, err := client.Fetch(context.Background(), AgencyHHS, testWindow)

	require.NoError(t, err)
	assert.Equal(t, "40", query.Get("per_page"))
}

func TestClient_WithRetryRecoversTransientStatus(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleResponse))
	}))
	defer ts.Close()

	policy := retryPolicyForTest()
	client := NewClient(WithBaseURL(ts.URL), WithRetry(policy))
	docs, err := client.Fetch(context.Background(), AgencyCMS, testWindow)

	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, 3, hits)
}
