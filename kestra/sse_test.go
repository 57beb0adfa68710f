package kestra

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestralog/models"
)

func TestReadEventStream(t *testing.T) {
	stream := strings.Join([]string{
		": keep-alive",
		"event: log",
		`data: {"executionId":"exec-1","level":"INFO","message":"started"}`,
		"",
		"event: log",
		`data: {"executionId":"exec-1","level":"ERROR","message":"failed"}`,
		"",
		"event: end",
		"data: done",
		"",
		"event: log",
		`data: {"executionId":"exec-1","level":"INFO","message":"after end"}`,
		"",
	}, "\n")

	var got []models.LogEntry
	err := readEventStream(context.Background(), strings.NewReader(stream), func(entry models.LogEntry) error {
		got = append(got, entry)
		return nil
	})
	require.NoError(t, err)

	// Entries after the end event are not delivered.
	require.Len(t, got, 2)
	assert.Equal(t, "started", got[0].Message)
	assert.Equal(t, models.LevelError, got[1].Level)
}

func TestReadEventStreamMultiLineData(t *testing.T) {
	stream := "data: {\"executionId\":\"exec-1\",\ndata: \"message\":\"split\"}\n\n"

	var got []models.LogEntry
	err := readEventStream(context.Background(), strings.NewReader(stream), func(entry models.LogEntry) error {
		got = append(got, entry)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "split", got[0].Message)
}

func TestReadEventStreamTrailingEvent(t *testing.T) {
	// No blank line after the last event; it must still be dispatched.
	stream := `data: {"executionId":"exec-1","message":"tail"}`

	var got []models.LogEntry
	err := readEventStream(context.Background(), strings.NewReader(stream), func(entry models.LogEntry) error {
		got = append(got, entry)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tail", got[0].Message)
}

func TestReadEventStreamHandlerError(t *testing.T) {
	stream := "data: {\"message\":\"one\"}\n\ndata: {\"message\":\"two\"}\n\n"

	calls := 0
	err := readEventStream(context.Background(), strings.NewReader(stream), func(models.LogEntry) error {
		calls++
		return fmt.Errorf("stop here")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop here")
	assert.Equal(t, 1, calls)
}

func TestReadEventStreamBadJSON(t *testing.T) {
	stream := "data: not-json\n\n"

	err := readEventStream(context.Background(), strings.NewReader(stream), func(models.LogEntry) error {
		t.Fatal("handler should not be called")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode event")
}

func TestFollowLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/main/logs/exec-1/follow", r.URL.Path)
		assert.Equal(t, "ERROR", r.URL.Query().Get("minLevel"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		fmt.Fprint(w, "event: log\ndata: {\"executionId\":\"exec-1\",\"level\":\"ERROR\",\"message\":\"boom\"}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: end\ndata: done\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "main", "")

	var got []models.LogEntry
	err := client.FollowLogs(context.Background(), "exec-1", models.LevelError, func(entry models.LogEntry) error {
		got = append(got, entry)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Message)
}

func TestFollowLogsInvalidLevel(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "")

	err := client.FollowLogs(context.Background(), "exec-1", "NOPE", func(models.LogEntry) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid level")
}

func TestFollowLogsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such execution", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "main", "")
	err := client.FollowLogs(context.Background(), "missing", "", func(models.LogEntry) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
