package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complianceops/regwatch/internal/a2a"
	"github.com/complianceops/regwatch/internal/fedreg"
)

var fixedToday = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// stubFetcher returns canned documents, recording the windows requested.
type stubFetcher struct {
	docs    []fedreg.Document
	err     error
	windows []fedreg.DateWindow
}

func (s *stubFetcher) Fetch(_ context.Context, _ fedreg.Agency, window fedreg.DateWindow) ([]fedreg.Document, error) {
	s.windows = append(s.windows, window)
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

func taskMessage(t *testing.T, params TaskParams) a2a.Message {
	t.Helper()
	dataPart, err := a2a.DataPart(params)
	require.NoError(t, err)
	return a2a.Message{
		MessageID: a2a.NewTaskID(),
		Role:      a2a.RoleUser,
		Parts:     []a2a.Part{a2a.TextPart("do the work"), dataPart},
	}
}

func sendTask(t *testing.T, ag Agent, msg a2a.Message) *a2a.Task {
	t.Helper()
	task, err := ag.HandleTask(context.Background(), a2a.Task{ID: a2a.NewTaskID()}, msg)
	require.NoError(t, err)
	return task
}

func artifactText(t *testing.T, task *a2a.Task) string {
	t.Helper()
	require.Len(t, task.Artifacts, 1)
	require.Len(t, task.Artifacts[0].Parts, 1)
	return task.Artifacts[0].Parts[0].Text
}

func TestFetchAgent_Card(t *testing.T) {
	ag := NewFetchAgent(&stubFetcher{})

	card := ag.Card()
	assert.Equal(t, "document-fetch", card.Name)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "fetch-recent-regulations", card.Skills[0].ID)
}

func TestFetchAgent_RendersDocuments(t *testing.T) {
	fetcher := &stubFetcher{docs: []fedreg.Document{
		{
			Number:          "2025-11111",
			Title:           "Hospital Payment Update",
			PublicationDate: "2025-06-20",
			Type:            "RULE",
			URL:             "https://example.gov/d/2025-11111",
		},
	}}
	ag := NewFetchAgent(fetcher, WithFetchClock(func() time.Time { return fixedToday }))

	task := sendTask(t, ag, taskMessage(t, TaskParams{Agency: "CMS", DaysBack: 30}))

	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	assert.Equal(t, "recent-regulations", task.Artifacts[0].Name)

	text := artifactText(t, task)
	assert.Contains(t, text, "Recent CMS regulations in the last 30 days (since 2025-06-01):")
	assert.Contains(t, text, "2025-11111")

	// The fetch window is [today-daysBack, today].
	require.Len(t, fetcher.windows, 1)
	assert.Equal(t, fixedToday.AddDate(0, 0, -30), fetcher.windows[0].Start)
	assert.Equal(t, fixedToday, fetcher.windows[0].End)
}

func TestFetchAgent_EmptyWindow(t *testing.T) {
	ag := NewFetchAgent(&stubFetcher{}, WithFetchClock(func() time.Time { return fixedToday }))

	task := sendTask(t, ag, taskMessage(t, TaskParams{Agency: "HHS", DaysBack: 7}))

	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	assert.Contains(t, artifactText(t, task), "No HHS regulations found in the last 7 days")
}

func TestFetchAgent_UpstreamErrorBecomesArtifactText(t *testing.T) {
	fetcher := &stubFetcher{err: &fedreg.UpstreamError{
		Op:     "get documents",
		Status: 503,
		Err:    fmt.Errorf("HTTP 503: unavailable"),
	}}
	ag := NewFetchAgent(fetcher, WithFetchClock(func() time.Time { return fixedToday }))

	task := sendTask(t, ag, taskMessage(t, TaskParams{DaysBack: 30}))

	// The task completes; the error travels as text.
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	assert.Contains(t, artifactText(t, task), "Error calling Federal Register API: HTTP 503: unavailable")
}

func TestFetchAgent_NonUpstreamErrorFailsTask(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("programming error")}
	ag := NewFetchAgent(fetcher, WithFetchClock(func() time.Time { return fixedToday }))

	task, err := ag.HandleTask(context.Background(), a2a.Task{ID: a2a.NewTaskID()},
		taskMessage(t, TaskParams{DaysBack: 30}))

	require.Error(t, err)
	require.NotNil(t, task)
	assert.Equal(t, a2a.TaskStateFailed, task.Status.State)
}

func TestFetchAgent_DefaultsWithoutParams(t *testing.T) {
	fetcher := &stubFetcher{}
	ag := NewFetchAgent(fetcher, WithFetchClock(func() time.Time { return fixedToday }))

	msg := a2a.Message{
		MessageID: a2a.NewTaskID(),
		Role:      a2a.RoleUser,
		Parts:     []a2a.Part{a2a.TextPart("fetch recent rules")},
	}
	task := sendTask(t, ag, msg)

	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	require.Len(t, fetcher.windows, 1)
	assert.Equal(t, fixedToday.AddDate(0, 0, -DefaultDaysBack), fetcher.windows[0].Start)
	assert.Contains(t, artifactText(t, task), "BOTH")
}
