package kestra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestralog/models"
)

// recordedRequest captures what the fake server saw.
type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	auth   string
}

func newFakeServer(t *testing.T, status int, body string, contentType string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.query = make(map[string]string)
		for key, values := range r.URL.Query() {
			rec.query[key] = values[0]
		}

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func TestExecutionLogs(t *testing.T) {
	body := `[
		{"namespace":"company.team","flowId":"etl","executionId":"exec-1","timestamp":"2024-05-01T12:00:00Z","level":"INFO","message":"task started"},
		{"namespace":"company.team","flowId":"etl","executionId":"exec-1","timestamp":"2024-05-01T12:00:01Z","level":"ERROR","message":"task failed"}
	]`
	srv, rec := newFakeServer(t, http.StatusOK, body, "application/json")

	client := NewClient(srv.URL, "main", "secret")
	attempt := 1
	entries, err := client.ExecutionLogs(context.Background(), "exec-1", models.LogFilter{
		MinLevel:  models.LevelInfo,
		TaskID:    "extract",
		TaskRunID: "run-1",
		Attempt:   &attempt,
	})
	require.NoError(t, err)

	assert.Equal(t, "GET", rec.method)
	assert.Equal(t, "/api/v1/main/logs/exec-1", rec.path)
	assert.Equal(t, "INFO", rec.query["minLevel"])
	assert.Equal(t, "extract", rec.query["taskId"])
	assert.Equal(t, "run-1", rec.query["taskRunId"])
	assert.Equal(t, "1", rec.query["attempt"])
	assert.Equal(t, "Bearer secret", rec.auth)

	require.Len(t, entries, 2)
	assert.Equal(t, "task started", entries[0].Message)
	assert.Equal(t, models.LevelError, entries[1].Level)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), entries[0].Timestamp)
}

func TestExecutionLogsInvalidLevel(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "")

	_, err := client.ExecutionLogs(context.Background(), "exec-1", models.LogFilter{MinLevel: "INVALID"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid level")
}

func TestExecutionLogsHTTPError(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusNotFound, `{"message":"not found"}`, "application/json")

	client := NewClient(srv.URL, "main", "")
	_, err := client.ExecutionLogs(context.Background(), "missing", models.LogFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestDownloadLogs(t *testing.T) {
	srv, rec := newFakeServer(t, http.StatusOK, "2024-05-01 INFO task started\n", "text/plain")

	client := NewClient(srv.URL, "dev", "")
	text, err := client.DownloadLogs(context.Background(), "exec-1", models.LogFilter{MinLevel: models.LevelWarn})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/dev/logs/exec-1/download", rec.path)
	assert.Equal(t, "WARN", rec.query["minLevel"])
	assert.Equal(t, "2024-05-01 INFO task started\n", text)
	assert.Empty(t, rec.auth)
}

func TestSearchLogs(t *testing.T) {
	body := `{"results":[{"namespace":"company.team","flowId":"etl","executionId":"exec-1","timestamp":"2024-05-01T12:00:00Z","level":"ERROR","message":"boom"}],"total":41}`
	srv, rec := newFakeServer(t, http.StatusOK, body, "application/json")

	client := NewClient(srv.URL, "", "")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	page, err := client.SearchLogs(context.Background(), models.SearchFilter{
		Query:     "boom",
		Namespace: "company.team",
		MinLevel:  models.LevelError,
		StartDate: &start,
		Page:      2,
		Size:      20,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/main/logs/search", rec.path)
	assert.Equal(t, "boom", rec.query["q"])
	assert.Equal(t, "company.team", rec.query["namespace"])
	assert.Equal(t, "ERROR", rec.query["minLevel"])
	assert.Equal(t, "2024-01-01T00:00:00Z", rec.query["startDate"])
	assert.Equal(t, "2", rec.query["page"])
	assert.Equal(t, "20", rec.query["size"])

	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Size)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "boom", page.Results[0].Message)
	assert.Equal(t, 3, page.TotalPages(20))
}

func TestSearchLogsDefaults(t *testing.T) {
	srv, rec := newFakeServer(t, http.StatusOK, `{"results":[],"total":0}`, "application/json")

	client := NewClient(srv.URL, "", "")
	_, err := client.SearchLogs(context.Background(), models.SearchFilter{})
	require.NoError(t, err)

	assert.Equal(t, "1", rec.query["page"])
	assert.Equal(t, "25", rec.query["size"])
	assert.NotContains(t, rec.query, "q")
	assert.NotContains(t, rec.query, "minLevel")
}

func TestDeleteExecutionLogsEmptyBody(t *testing.T) {
	srv, rec := newFakeServer(t, http.StatusOK, "", "")

	client := NewClient(srv.URL, "main", "")
	result, err := client.DeleteExecutionLogs(context.Background(), "exec-1", models.LogFilter{TaskID: "extract"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE", rec.method)
	assert.Equal(t, "/api/v1/main/logs/exec-1", rec.path)
	assert.Equal(t, "extract", rec.query["taskId"])
	assert.Equal(t, "deleted", result.Status)
}

func TestDeleteExecutionLogsJSONBody(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{"status":"deleted","count":12}`, "application/json")

	client := NewClient(srv.URL, "main", "")
	result, err := client.DeleteExecutionLogs(context.Background(), "exec-1", models.LogFilter{})
	require.NoError(t, err)
	assert.Equal(t, "deleted", result.Status)
	assert.Equal(t, 12, result.Count)
}

func TestDeleteFlowLogs(t *testing.T) {
	srv, rec := newFakeServer(t, http.StatusOK, "", "")

	client := NewClient(srv.URL, "main", "")
	result, err := client.DeleteFlowLogs(context.Background(), "company.team", "etl", "daily")
	require.NoError(t, err)

	assert.Equal(t, "DELETE", rec.method)
	assert.Equal(t, "/api/v1/main/logs/company.team/etl", rec.path)
	assert.Equal(t, "daily", rec.query["triggerId"])
	assert.Equal(t, "deleted", result.Status)
}

func TestDeleteFlowLogsRequiresIdentifiers(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "")

	_, err := client.DeleteFlowLogs(context.Background(), "", "etl", "")
	require.Error(t, err)

	_, err = client.DeleteFlowLogs(context.Background(), "company.team", "", "")
	require.Error(t, err)
}

func TestExecutionLogsRequiresID(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "")

	_, err := client.ExecutionLogs(context.Background(), "", models.LogFilter{})
	require.Error(t, err)
}
