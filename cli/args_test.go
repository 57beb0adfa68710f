package cli

import (
	"testing"
	"time"

	"kestralog/models"
)

func TestParseSearchArgs(t *testing.T) {
	page, filter, err := parseSearchArgs([]string{
		"connection", "refused",
		"--namespace", "company.team",
		"--flow=etl",
		"--min-level", "error",
		"--start", "2024-01-01",
		"--end=2024-01-31T23:59:59Z",
		"3",
	})
	if err != nil {
		t.Fatalf("parseSearchArgs: %v", err)
	}

	if page != 3 {
		t.Fatalf("page = %d, want 3", page)
	}
	if filter.Query != "connection refused" {
		t.Fatalf("query = %q", filter.Query)
	}
	if filter.Namespace != "company.team" {
		t.Fatalf("namespace = %q", filter.Namespace)
	}
	if filter.FlowID != "etl" {
		t.Fatalf("flow = %q", filter.FlowID)
	}
	if filter.MinLevel != models.LevelError {
		t.Fatalf("min level = %q", filter.MinLevel)
	}
	if filter.StartDate == nil || !filter.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", filter.StartDate)
	}
	if filter.EndDate == nil || !filter.EndDate.Equal(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("end = %v", filter.EndDate)
	}
}

func TestParseSearchArgsEmpty(t *testing.T) {
	page, filter, err := parseSearchArgs(nil)
	if err != nil {
		t.Fatalf("parseSearchArgs: %v", err)
	}
	if page != 1 {
		t.Fatalf("page = %d, want 1", page)
	}
	if filter.Query != "" || filter.Namespace != "" {
		t.Fatalf("expected empty filter, got %+v", filter)
	}
}

func TestParseSearchArgsErrors(t *testing.T) {
	tests := [][]string{
		{"--namespace"},
		{"--namespace="},
		{"--min-level", "BOGUS"},
		{"--start", "yesterday"},
		{"--unknown", "x"},
	}

	for _, args := range tests {
		if _, _, err := parseSearchArgs(args); err == nil {
			t.Fatalf("parseSearchArgs(%v) expected error", args)
		}
	}
}

func TestParseLogFilterArgs(t *testing.T) {
	filter, positional, err := parseLogFilterArgs([]string{
		"exec-1",
		"--min-level=warn",
		"--task-id", "extract",
		"--task-run-id=run-1",
		"--attempt", "2",
	})
	if err != nil {
		t.Fatalf("parseLogFilterArgs: %v", err)
	}

	if len(positional) != 1 || positional[0] != "exec-1" {
		t.Fatalf("positional = %v", positional)
	}
	if filter.MinLevel != models.LevelWarn {
		t.Fatalf("min level = %q", filter.MinLevel)
	}
	if filter.TaskID != "extract" {
		t.Fatalf("task id = %q", filter.TaskID)
	}
	if filter.TaskRunID != "run-1" {
		t.Fatalf("task run id = %q", filter.TaskRunID)
	}
	if filter.Attempt == nil || *filter.Attempt != 2 {
		t.Fatalf("attempt = %v", filter.Attempt)
	}
}

func TestParseLogFilterArgsErrors(t *testing.T) {
	tests := [][]string{
		{"--attempt", "-1"},
		{"--attempt", "x"},
		{"--task-id", ""},
		{"--min-level"},
		{"--nope", "1"},
	}

	for _, args := range tests {
		if _, _, err := parseLogFilterArgs(args); err == nil {
			t.Fatalf("parseLogFilterArgs(%v) expected error", args)
		}
	}
}

func TestParseFollowArgs(t *testing.T) {
	level, positional, err := parseFollowArgs([]string{"exec-1", "--min-level", "warn"})
	if err != nil {
		t.Fatalf("parseFollowArgs: %v", err)
	}
	if level != models.LevelWarn {
		t.Fatalf("level = %q, want WARN", level)
	}
	if len(positional) != 1 || positional[0] != "exec-1" {
		t.Fatalf("positional = %v", positional)
	}

	level, positional, err = parseFollowArgs([]string{"exec-1"})
	if err != nil {
		t.Fatalf("parseFollowArgs: %v", err)
	}
	if level != "" || len(positional) != 1 {
		t.Fatalf("level = %q positional = %v", level, positional)
	}
}

func TestParseFollowArgsRejectsUnsupportedFlags(t *testing.T) {
	tests := [][]string{
		{"exec-1", "--task-id", "extract"},
		{"exec-1", "--task-run-id=run-1"},
		{"exec-1", "--attempt", "2"},
		{"exec-1", "--min-level", "BOGUS"},
		{"exec-1", "--min-level"},
	}

	for _, args := range tests {
		if _, _, err := parseFollowArgs(args); err == nil {
			t.Fatalf("parseFollowArgs(%v) expected error", args)
		}
	}
}

func TestExtractFlagValue(t *testing.T) {
	value, rest, err := extractFlagValue([]string{"exec-1", "--out", "logs.txt", "--min-level", "INFO"}, "--out")
	if err != nil {
		t.Fatalf("extractFlagValue: %v", err)
	}
	if value != "logs.txt" {
		t.Fatalf("value = %q", value)
	}
	if len(rest) != 3 || rest[0] != "exec-1" || rest[1] != "--min-level" {
		t.Fatalf("rest = %v", rest)
	}

	value, rest, err = extractFlagValue([]string{"--out=dump.log", "exec-1"}, "--out")
	if err != nil {
		t.Fatalf("extractFlagValue: %v", err)
	}
	if value != "dump.log" {
		t.Fatalf("value = %q", value)
	}
	if len(rest) != 1 || rest[0] != "exec-1" {
		t.Fatalf("rest = %v", rest)
	}

	value, rest, err = extractFlagValue([]string{"exec-1"}, "--out")
	if err != nil {
		t.Fatalf("extractFlagValue: %v", err)
	}
	if value != "" || len(rest) != 1 {
		t.Fatalf("value = %q rest = %v", value, rest)
	}

	if _, _, err := extractFlagValue([]string{"--out"}, "--out"); err == nil {
		t.Fatalf("expected error for missing value")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a very long string", 10); got != "a very ..." {
		t.Fatalf("truncate = %q", got)
	}
}
