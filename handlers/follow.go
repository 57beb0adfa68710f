package handlers

import (
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"kestralog/models"
	"kestralog/service"
)

// FollowExecutionLogs relays the upstream SSE stream to the caller.
// The upstream follow is bound to the request context, so a disconnecting
// client tears down the remote stream as well.
func FollowExecutionLogs(c *gin.Context) {
	minLevel, err := models.ParseLevel(c.Query("minLevel"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	err = service.GlobalServices.Kestra.FollowLogs(c.Request.Context(), c.Param("executionId"), minLevel,
		func(entry models.LogEntry) error {
			if writeErr := sse.Encode(c.Writer, sse.Event{Event: "log", Data: entry}); writeErr != nil {
				return writeErr
			}
			c.Writer.Flush()
			return nil
		})
	if err != nil {
		// Headers are already out; surface the failure as an error event.
		_ = sse.Encode(c.Writer, sse.Event{Event: "error", Data: err.Error()})
		c.Writer.Flush()
		return
	}

	_ = sse.Encode(c.Writer, sse.Event{Event: "end", Data: "done"})
	c.Writer.Flush()
}
