package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kestralog/models"
	"kestralog/service"
	"kestralog/version"
)

// RegisterRoutes mounts the gateway API on the router.
func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(TokenAuthMiddleware())
	{
		// Remote log relays
		api.GET("/logs/search", SearchLogs)
		api.GET("/logs/:executionId", GetExecutionLogs)
		api.GET("/logs/:executionId/download", DownloadExecutionLogs)
		api.GET("/logs/:executionId/follow", FollowExecutionLogs)
		api.DELETE("/logs/:executionId", DeleteExecutionLogs)
		api.DELETE("/logs/flow/:namespace/:flowId", DeleteFlowLogs)

		// Local archive
		api.GET("/archive", SearchArchive)
		api.POST("/archive/pull/:executionId", PullExecution)
		api.DELETE("/archive", ClearArchive)

		// Health and version routes
		api.GET("/health", HealthCheck)
		api.GET("/version", GetVersion)
	}
}

// parseLogFilter reads the execution-scoped filter params from the query.
func parseLogFilter(c *gin.Context) (models.LogFilter, error) {
	filter := models.LogFilter{
		MinLevel:  models.Level(c.Query("minLevel")),
		TaskID:    c.Query("taskId"),
		TaskRunID: c.Query("taskRunId"),
	}

	if raw := c.Query("attempt"); raw != "" {
		attempt, err := strconv.Atoi(raw)
		if err != nil {
			return filter, err
		}
		filter.Attempt = &attempt
	}

	filter.Normalize()
	return filter, filter.Validate()
}

// GetExecutionLogs relays an execution log fetch to the remote server.
func GetExecutionLogs(c *gin.Context) {
	filter, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	entries, err := service.GlobalServices.Kestra.ExecutionLogs(c.Request.Context(), c.Param("executionId"), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// DownloadExecutionLogs relays a plain-text log download.
func DownloadExecutionLogs(c *gin.Context) {
	filter, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	executionID := c.Param("executionId")
	text, err := service.GlobalServices.Kestra.DownloadLogs(c.Request.Context(), executionID, filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+executionID+".log")
	c.String(http.StatusOK, text)
}

// SearchLogs relays a global log search.
func SearchLogs(c *gin.Context) {
	filter := models.SearchFilter{
		Query:     c.Query("q"),
		Namespace: c.Query("namespace"),
		FlowID:    c.Query("flowId"),
		MinLevel:  models.Level(c.Query("minLevel")),
	}

	var err error
	if filter.Page, filter.Size, err = parsePagination(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if filter.StartDate, err = parseDateParam(c, "startDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if filter.EndDate, err = parseDateParam(c, "endDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	filter.Normalize()
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	page, err := service.GlobalServices.Kestra.SearchLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}

// DeleteExecutionLogs relays an execution log deletion.
func DeleteExecutionLogs(c *gin.Context) {
	filter, err := parseLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := service.GlobalServices.Kestra.DeleteExecutionLogs(c.Request.Context(), c.Param("executionId"), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteFlowLogs relays a flow-wide log deletion.
func DeleteFlowLogs(c *gin.Context) {
	result, err := service.GlobalServices.Kestra.DeleteFlowLogs(
		c.Request.Context(),
		c.Param("namespace"),
		c.Param("flowId"),
		c.Query("triggerId"),
	)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchArchive searches the local archive.
func SearchArchive(c *gin.Context) {
	filter := service.ArchiveFilter{
		Query:       c.Query("q"),
		Namespace:   c.Query("namespace"),
		FlowID:      c.Query("flowId"),
		ExecutionID: c.Query("executionId"),
		MinLevel:    models.Level(c.Query("minLevel")),
	}

	page, size, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if filter.Start, err = parseDateParam(c, "startDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if filter.End, err = parseDateParam(c, "endDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	entries, total, err := service.GlobalServices.Archive.Search(filter, page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.LogSearchPage{
		Results: entries,
		Total:   int(total),
		Page:    page,
		Size:    size,
	})
}

// PullExecution fetches an execution's logs into the local archive.
func PullExecution(c *gin.Context) {
	count, err := service.GlobalServices.Logs.Pull(c.Request.Context(), c.Param("executionId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "archived": count})
}

// ClearArchive removes all archived log entries.
func ClearArchive(c *gin.Context) {
	if err := service.GlobalServices.Archive.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HealthCheck reports gateway liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetVersion reports build information.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.GetVersion(),
		"commit":  version.CommitHash,
		"build":   version.BuildTime,
	})
}

func parsePagination(c *gin.Context) (page, size int, err error) {
	page = models.DefaultSearchPage
	size = models.DefaultSearchSize

	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			return 0, 0, err
		}
	}
	if raw := c.Query("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			return 0, 0, err
		}
	}
	return page, size, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
