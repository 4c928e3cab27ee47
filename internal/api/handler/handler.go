package handler

import (
	"optimus/backend/config"
	"optimus/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Dataset      *DatasetHandler
	Record       *RecordHandler
	Conflict     *ConflictHandler
	Availability *AvailabilityHandler
	Analytics    *AnalyticsHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Dataset:      NewDatasetHandler(svc.Dataset, cfg.Ingest.MaxUploadBytes()),
		Record:       NewRecordHandler(svc.Record),
		Conflict:     NewConflictHandler(svc.Conflict),
		Availability: NewAvailabilityHandler(svc.Availability),
		Analytics:    NewAnalyticsHandler(svc.Analytics),
		Export:       NewExportHandler(svc.Export),
	}
}
