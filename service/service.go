package service

import (
	"gorm.io/gorm"

	"kestralog/kestra"
)

// Services is the global service container
type Services struct {
	Kestra  *kestra.Client
	Archive *ArchiveService
	Logs    *LogService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(client *kestra.Client, db *gorm.DB) {
	archiveSvc := NewArchiveService(db)
	logSvc := NewLogService(client, archiveSvc)

	GlobalServices = &Services{
		Kestra:  client,
		Archive: archiveSvc,
		Logs:    logSvc,
	}
}

// SetClient swaps the remote client, e.g. after a server switch.
func (s *Services) SetClient(client *kestra.Client) {
	s.Kestra = client
	s.Logs.client = client
}
