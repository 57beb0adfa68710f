package kestra

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kestralog/models"
)

// maxSSELineBytes bounds a single SSE line; log messages can be large.
const maxSSELineBytes = 1024 * 1024

// LogHandler receives streamed log entries. Returning an error stops the stream.
type LogHandler func(models.LogEntry) error

// FollowLogs streams logs for a running execution over Server-Sent Events.
// Each decoded entry is passed to handler. The stream ends when the server
// emits an "end" event, the context is cancelled, or handler returns an error.
func (c *Client) FollowLogs(ctx context.Context, executionID string, minLevel models.Level, handler LogHandler) error {
	if executionID == "" {
		return fmt.Errorf("execution id is required")
	}
	level, err := models.ParseLevel(string(minLevel))
	if err != nil {
		return err
	}

	rawURL := c.apiPath(executionID, "follow")
	if level != "" {
		rawURL += "?minLevel=" + string(level)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return readEventStream(ctx, resp.Body, handler)
}

// readEventStream parses a text/event-stream body and dispatches log entries.
func readEventStream(ctx context.Context, body io.Reader, handler LogHandler) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineBytes)

	var eventName string
	var data strings.Builder

	dispatch := func() (done bool, err error) {
		defer func() {
			eventName = ""
			data.Reset()
		}()

		// Kestra signals a finished execution with an "end" event.
		if eventName == "end" {
			return true, nil
		}

		payload := strings.TrimSpace(data.String())
		if payload == "" {
			return false, nil
		}

		var entry models.LogEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return false, fmt.Errorf("failed to decode event: %v", err)
		}

		return false, handler(entry)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()

		// Blank line terminates an event.
		if line == "" {
			done, err := dispatch()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		// Comment line, keep-alive.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := line, ""
		if idx := strings.Index(line, ":"); idx >= 0 {
			field = line[:idx]
			value = strings.TrimPrefix(line[idx+1:], " ")
		}

		switch field {
		case "event":
			eventName = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("stream read failed: %v", err)
	}

	// Flush a trailing event that was not followed by a blank line.
	if _, err := dispatch(); err != nil {
		return err
	}

	return nil
}
