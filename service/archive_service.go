package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"kestralog/models"
)

// ArchiveService stores pulled log entries in the local SQLite archive
// and answers offline searches against them.
type ArchiveService struct {
	db *gorm.DB
}

// NewArchiveService creates an archive service backed by db.
func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// ArchiveFilter narrows offline archive searches.
type ArchiveFilter struct {
	Query       string
	Namespace   string
	FlowID      string
	ExecutionID string
	MinLevel    models.Level
	Start       *time.Time
	End         *time.Time
}

// SaveEntries replaces the archived logs of an execution with the given
// entries. Re-pulling an execution is idempotent.
func (s *ArchiveService) SaveEntries(executionID string, entries []models.LogEntry) (int, error) {
	if executionID == "" {
		return 0, fmt.Errorf("execution id is required")
	}

	pulledAt := time.Now().UTC()
	rows := make([]models.ArchivedLog, 0, len(entries))
	for _, entry := range entries {
		if entry.ExecutionID == "" {
			entry.ExecutionID = executionID
		}
		rows = append(rows, models.NewArchivedLog(entry, pulledAt))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("execution_id = ?", executionID).Delete(&models.ArchivedLog{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to archive logs: %v", err)
	}

	return len(rows), nil
}

// Search queries the archive with pagination, newest entries first.
// It returns the matching page and the total match count.
func (s *ArchiveService) Search(filter ArchiveFilter, page, size int) ([]models.LogEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = models.DefaultSearchSize
	}
	level, err := models.ParseLevel(string(filter.MinLevel))
	if err != nil {
		return nil, 0, err
	}
	filter.MinLevel = level
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, 0, fmt.Errorf("end date is before start date")
	}

	query := s.db.Model(&models.ArchivedLog{})

	if filter.Query != "" {
		query = query.Where("message LIKE ?", "%"+filter.Query+"%")
	}
	if filter.Namespace != "" {
		query = query.Where("namespace = ?", filter.Namespace)
	}
	if filter.FlowID != "" {
		query = query.Where("flow_id = ?", filter.FlowID)
	}
	if filter.ExecutionID != "" {
		query = query.Where("execution_id = ?", filter.ExecutionID)
	}
	if filter.MinLevel != "" {
		query = query.Where("level IN ?", levelsAtLeast(filter.MinLevel))
	}
	if filter.Start != nil {
		query = query.Where("timestamp >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		query = query.Where("timestamp <= ?", filter.End.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count archive logs: %v", err)
	}

	var rows []models.ArchivedLog
	err = query.
		Order("timestamp DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query archive: %v", err)
	}

	entries := make([]models.LogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].Entry())
	}

	return entries, total, nil
}

// Count returns the number of archived log entries.
func (s *ArchiveService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.ArchivedLog{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Clear removes all archived log entries.
func (s *ArchiveService) Clear() error {
	return s.db.Where("1 = 1").Delete(&models.ArchivedLog{}).Error
}

// levelsAtLeast expands a minimum level into the matching level names,
// since severity ordering is not expressible in SQL over level strings.
func levelsAtLeast(min models.Level) []string {
	names := make([]string, 0, len(models.Levels))
	for _, l := range models.Levels {
		if l.AtLeast(min) {
			names = append(names, string(l))
		}
	}
	return names
}
