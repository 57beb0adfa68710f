package service

import (
	"context"
	"fmt"
	"log"

	"kestralog/kestra"
	"kestralog/models"
)

// LogService combines the remote client with the local archive.
type LogService struct {
	client  *kestra.Client
	archive *ArchiveService
}

// NewLogService creates a log service.
func NewLogService(client *kestra.Client, archive *ArchiveService) *LogService {
	return &LogService{client: client, archive: archive}
}

// Pull fetches all logs of an execution from the remote server and stores
// them in the local archive, replacing any earlier pull of that execution.
func (s *LogService) Pull(ctx context.Context, executionID string) (int, error) {
	entries, err := s.client.ExecutionLogs(ctx, executionID, models.LogFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch logs for %s: %v", executionID, err)
	}

	count, err := s.archive.SaveEntries(executionID, entries)
	if err != nil {
		return 0, err
	}

	log.Printf("Archived %d log entries for execution %s", count, executionID)
	return count, nil
}
