package models

import "time"

// ArchivedLog is a locally stored copy of a remote log entry.
// Rows are written by `archive pull` and queried offline.
type ArchivedLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Namespace     string    `gorm:"index" json:"namespace"`
	FlowID        string    `gorm:"index" json:"flow_id"`
	TaskID        string    `json:"task_id,omitempty"`
	ExecutionID   string    `gorm:"index;not null" json:"execution_id"`
	TaskRunID     string    `json:"task_run_id,omitempty"`
	AttemptNumber int       `json:"attempt_number,omitempty"`
	TriggerID     string    `json:"trigger_id,omitempty"`
	Timestamp     time.Time `gorm:"index" json:"timestamp"`
	Level         string    `gorm:"index" json:"level"`
	Thread        string    `json:"thread,omitempty"`
	Message       string    `gorm:"type:text" json:"message"`
	ExecutionKind string    `json:"execution_kind,omitempty"`
	PulledAt      time.Time `json:"pulled_at"`
}

// NewArchivedLog converts a remote log entry into an archive row.
func NewArchivedLog(entry LogEntry, pulledAt time.Time) ArchivedLog {
	return ArchivedLog{
		Namespace:     entry.Namespace,
		FlowID:        entry.FlowID,
		TaskID:        entry.TaskID,
		ExecutionID:   entry.ExecutionID,
		TaskRunID:     entry.TaskRunID,
		AttemptNumber: entry.AttemptNumber,
		TriggerID:     entry.TriggerID,
		Timestamp:     entry.Timestamp,
		Level:         string(entry.Level),
		Thread:        entry.Thread,
		Message:       entry.Message,
		ExecutionKind: entry.ExecutionKind,
		PulledAt:      pulledAt,
	}
}

// Entry converts the archive row back into the remote log entry shape.
func (a *ArchivedLog) Entry() LogEntry {
	return LogEntry{
		Namespace:     a.Namespace,
		FlowID:        a.FlowID,
		TaskID:        a.TaskID,
		ExecutionID:   a.ExecutionID,
		TaskRunID:     a.TaskRunID,
		AttemptNumber: a.AttemptNumber,
		TriggerID:     a.TriggerID,
		Timestamp:     a.Timestamp,
		Level:         Level(a.Level),
		Thread:        a.Thread,
		Message:       a.Message,
		ExecutionKind: a.ExecutionKind,
	}
}
