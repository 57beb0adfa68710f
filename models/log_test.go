package models

import (
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"ERROR", LevelError, false},
		{"error", LevelError, false},
		{" warn ", LevelWarn, false},
		{"INFO", LevelInfo, false},
		{"DEBUG", LevelDebug, false},
		{"TRACE", LevelTrace, false},
		{"", "", false},
		{"INVALID", "", true},
		{"FATAL", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLevel(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLevelAtLeast(t *testing.T) {
	if !LevelError.AtLeast(LevelInfo) {
		t.Fatalf("ERROR should satisfy min INFO")
	}
	if LevelDebug.AtLeast(LevelInfo) {
		t.Fatalf("DEBUG should not satisfy min INFO")
	}
	if !LevelTrace.AtLeast("") {
		t.Fatalf("empty min should match everything")
	}
	if !LevelInfo.AtLeast(LevelInfo) {
		t.Fatalf("a level should satisfy itself as minimum")
	}
}

func TestLogFilterValues(t *testing.T) {
	attempt := 2
	filter := LogFilter{
		MinLevel:  LevelWarn,
		TaskID:    "extract",
		TaskRunID: "run-1",
		Attempt:   &attempt,
	}

	values := filter.Values()
	if got := values.Get("minLevel"); got != "WARN" {
		t.Fatalf("minLevel = %q, want WARN", got)
	}
	if got := values.Get("taskId"); got != "extract" {
		t.Fatalf("taskId = %q, want extract", got)
	}
	if got := values.Get("taskRunId"); got != "run-1" {
		t.Fatalf("taskRunId = %q, want run-1", got)
	}
	if got := values.Get("attempt"); got != "2" {
		t.Fatalf("attempt = %q, want 2", got)
	}
}

func TestLogFilterValuesOmitsEmpty(t *testing.T) {
	values := (&LogFilter{}).Values()
	if len(values) != 0 {
		t.Fatalf("empty filter should produce no params, got %v", values)
	}
}

func TestSearchFilterNormalizeDefaults(t *testing.T) {
	filter := SearchFilter{}
	filter.Normalize()

	if filter.Page != DefaultSearchPage {
		t.Fatalf("page = %d, want %d", filter.Page, DefaultSearchPage)
	}
	if filter.Size != DefaultSearchSize {
		t.Fatalf("size = %d, want %d", filter.Size, DefaultSearchSize)
	}
}

func TestSearchFilterValues(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	filter := SearchFilter{
		Query:     "connection refused",
		Namespace: "company.team",
		FlowID:    "etl",
		MinLevel:  LevelError,
		StartDate: &start,
		EndDate:   &end,
		Page:      3,
		Size:      50,
	}

	values := filter.Values()
	if got := values.Get("q"); got != "connection refused" {
		t.Fatalf("q = %q", got)
	}
	if got := values.Get("namespace"); got != "company.team" {
		t.Fatalf("namespace = %q", got)
	}
	if got := values.Get("flowId"); got != "etl" {
		t.Fatalf("flowId = %q", got)
	}
	if got := values.Get("minLevel"); got != "ERROR" {
		t.Fatalf("minLevel = %q", got)
	}
	if got := values.Get("startDate"); got != "2024-01-01T00:00:00Z" {
		t.Fatalf("startDate = %q", got)
	}
	if got := values.Get("endDate"); got != "2024-01-31T23:59:59Z" {
		t.Fatalf("endDate = %q", got)
	}
	if got := values.Get("page"); got != "3" {
		t.Fatalf("page = %q", got)
	}
	if got := values.Get("size"); got != "50" {
		t.Fatalf("size = %q", got)
	}
}

func TestSearchFilterValidateDateOrder(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	filter := SearchFilter{StartDate: &start, EndDate: &end}
	filter.Normalize()
	if err := filter.Validate(); err == nil {
		t.Fatalf("expected error for end before start")
	}
}

func TestArchivedLogRoundTrip(t *testing.T) {
	entry := LogEntry{
		Namespace:     "company.team",
		FlowID:        "etl",
		TaskID:        "extract",
		ExecutionID:   "exec-1",
		TaskRunID:     "run-1",
		AttemptNumber: 1,
		Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Level:         LevelInfo,
		Thread:        "worker-1",
		Message:       "task started",
	}

	row := NewArchivedLog(entry, time.Now())
	got := row.Entry()
	if got != entry {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, entry)
	}
}
