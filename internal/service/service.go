package service

import (
	"go.uber.org/zap"

	"optimus/backend/config"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/repository"
	"optimus/backend/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Dataset      DatasetService
	Record       RecordService
	Conflict     ConflictService
	Availability AvailabilityService
	Analytics    AnalyticsService
	Export       ExportService
}

// NewService 创建 Service 聚合
// recorder 可为 nil（关闭指标时）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *Service {
	window, err := cfg.Availability.Window()
	if err != nil {
		logger.Warn("空闲时间窗口配置无效，使用默认窗口", zap.Error(err))
		window = engine.DefaultWindow()
	}
	detector := engine.NewConflictDetector(cfg.Conflict.Policy())
	avail := engine.NewAvailabilityEngine(window)

	availability := NewAvailabilityService(repo, avail, logger)
	conflict := NewConflictService(repo, detector, recorder, logger)

	return &Service{
		Dataset:      NewDatasetService(repo, engine.NewNormalizer(), recorder, logger),
		Record:       NewRecordService(repo, logger),
		Conflict:     conflict,
		Availability: availability,
		Analytics:    NewAnalyticsService(repo, logger),
		Export:       NewExportService(availability, conflict, logger),
	}
}
