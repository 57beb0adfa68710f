package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Level is a Kestra log level.
type Level string

// Log levels in ascending severity order.
const (
	LevelTrace Level = "TRACE"
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Levels lists all valid levels in ascending severity order.
var Levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

var levelSeverity = map[Level]int{
	LevelTrace: 0,
	LevelDebug: 1,
	LevelInfo:  2,
	LevelWarn:  3,
	LevelError: 4,
}

// ParseLevel validates a level string and returns the canonical Level.
// The empty string is accepted and means "no filter".
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return "", nil
	}

	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelSeverity[level]; !ok {
		names := make([]string, 0, len(Levels))
		for _, l := range Levels {
			names = append(names, string(l))
		}
		return "", fmt.Errorf("invalid level %q, must be one of: %s", s, strings.Join(names, ", "))
	}
	return level, nil
}

// Valid reports whether the level is a known level or empty.
func (l Level) Valid() bool {
	if l == "" {
		return true
	}
	_, ok := levelSeverity[l]
	return ok
}

// Severity returns the numeric severity of the level. Unknown levels rank lowest.
func (l Level) Severity() int {
	return levelSeverity[l]
}

// AtLeast reports whether l is at or above min severity.
// An empty min matches everything.
func (l Level) AtLeast(min Level) bool {
	if min == "" {
		return true
	}
	return l.Severity() >= min.Severity()
}

// LogEntry mirrors a single log line as returned by the Kestra log API.
// The schema is owned by the remote service.
type LogEntry struct {
	Namespace     string    `json:"namespace"`
	FlowID        string    `json:"flowId"`
	TaskID        string    `json:"taskId,omitempty"`
	ExecutionID   string    `json:"executionId"`
	TaskRunID     string    `json:"taskRunId,omitempty"`
	AttemptNumber int       `json:"attemptNumber,omitempty"`
	TriggerID     string    `json:"triggerId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Level         Level     `json:"level"`
	Thread        string    `json:"thread,omitempty"`
	Message       string    `json:"message"`
	Deleted       bool      `json:"deleted,omitempty"`
	ExecutionKind string    `json:"executionKind,omitempty"`
}

// LogFilter narrows execution-scoped log operations (fetch, download, delete).
// Zero fields are omitted from the request.
type LogFilter struct {
	MinLevel  Level
	TaskID    string
	TaskRunID string
	Attempt   *int
}

// Normalize trims whitespace from input fields
func (f *LogFilter) Normalize() {
	f.MinLevel = Level(strings.ToUpper(strings.TrimSpace(string(f.MinLevel))))
	f.TaskID = strings.TrimSpace(f.TaskID)
	f.TaskRunID = strings.TrimSpace(f.TaskRunID)
}

// Validate checks filter fields that are constrained client-side.
func (f *LogFilter) Validate() error {
	if !f.MinLevel.Valid() {
		_, err := ParseLevel(string(f.MinLevel))
		return err
	}
	return nil
}

// Values renders the filter as API query parameters.
func (f *LogFilter) Values() url.Values {
	values := url.Values{}
	if f.MinLevel != "" {
		values.Set("minLevel", string(f.MinLevel))
	}
	if f.TaskRunID != "" {
		values.Set("taskRunId", f.TaskRunID)
	}
	if f.TaskID != "" {
		values.Set("taskId", f.TaskID)
	}
	if f.Attempt != nil {
		values.Set("attempt", strconv.Itoa(*f.Attempt))
	}
	return values
}

// Default pagination for log search.
const (
	DefaultSearchPage = 1
	DefaultSearchSize = 25
)

// SearchFilter narrows the global log search.
type SearchFilter struct {
	Query     string
	Namespace string
	FlowID    string
	MinLevel  Level
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Size      int
}

// Normalize trims input fields and applies pagination defaults
func (f *SearchFilter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	f.Namespace = strings.TrimSpace(f.Namespace)
	f.FlowID = strings.TrimSpace(f.FlowID)
	f.MinLevel = Level(strings.ToUpper(strings.TrimSpace(string(f.MinLevel))))

	if f.Page < 1 {
		f.Page = DefaultSearchPage
	}
	if f.Size < 1 {
		f.Size = DefaultSearchSize
	}
}

// Validate checks filter fields that are constrained client-side.
func (f *SearchFilter) Validate() error {
	if !f.MinLevel.Valid() {
		_, err := ParseLevel(string(f.MinLevel))
		return err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			f.EndDate.Format(time.RFC3339), f.StartDate.Format(time.RFC3339))
	}
	return nil
}

// Values renders the filter as API query parameters.
// Dates are sent as RFC3339, matching the remote API.
func (f *SearchFilter) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(f.Page))
	values.Set("size", strconv.Itoa(f.Size))

	if f.Query != "" {
		values.Set("q", f.Query)
	}
	if f.Namespace != "" {
		values.Set("namespace", f.Namespace)
	}
	if f.FlowID != "" {
		values.Set("flowId", f.FlowID)
	}
	if f.MinLevel != "" {
		values.Set("minLevel", string(f.MinLevel))
	}
	if f.StartDate != nil {
		values.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		values.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	return values
}

// LogSearchPage is one page of global search results.
type LogSearchPage struct {
	Results []LogEntry `json:"results"`
	Total   int        `json:"total"`
	Page    int        `json:"page,omitempty"`
	Size    int        `json:"size,omitempty"`
}

// TotalPages returns the page count for the given page size.
func (p *LogSearchPage) TotalPages(size int) int {
	if size <= 0 {
		return 0
	}
	return (p.Total + size - 1) / size
}

// DeleteResult reports the outcome of a log deletion.
// The remote API may answer with an empty body; that maps to Status "deleted".
type DeleteResult struct {
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
}
