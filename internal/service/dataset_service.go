package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
	"optimus/backend/internal/repository"
	"optimus/backend/pkg/metrics"
	"optimus/backend/pkg/tabular"
)

// ── 数据集模块业务错误 ──

var (
	ErrDatasetNotFound    = errors.New("数据集不存在")
	ErrDatasetDuplicate   = errors.New("同名文件已导入")
	ErrDatasetEmpty       = errors.New("文件中没有有效的课程记录")
	ErrDatasetUnsupported = errors.New("不支持的文件格式，仅支持 .csv / .tsv / .xlsx")
	ErrDatasetBadName     = errors.New("文件名无效")
)

// DatasetService 数据集业务接口
type DatasetService interface {
	// Import 解析并归一化上传文件，以文件名作为来源标签整体写入
	Import(ctx context.Context, filename string, r io.Reader) (*dto.ImportResponse, error)
	List(ctx context.Context) ([]dto.DatasetResponse, error)
	Delete(ctx context.Context, sourceFile string) error
	Clear(ctx context.Context) (int64, error)
}

type datasetService struct {
	repo       *repository.Repository
	normalizer *engine.Normalizer
	recorder   *metrics.Recorder
	logger     *zap.Logger
}

// NewDatasetService 创建 DatasetService 实例
func NewDatasetService(repo *repository.Repository, normalizer *engine.Normalizer, recorder *metrics.Recorder, logger *zap.Logger) DatasetService {
	return &datasetService{repo: repo, normalizer: normalizer, recorder: recorder, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Import — 导入课表文件
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 同名文件已存在 → ErrDatasetDuplicate（不覆盖）
//   2. 读取失败 → *engine.ParseFailure，不写入任何数据
//   3. 归一化后无有效记录 → ErrDatasetEmpty
//   4. 数据集与全部记录在同一事务中写入

func (s *datasetService) Import(ctx context.Context, filename string, r io.Reader) (*dto.ImportResponse, error) {
	sourceFile := strings.TrimSpace(filepath.Base(filename))
	if sourceFile == "" || sourceFile == "." || sourceFile == string(filepath.Separator) {
		return nil, ErrDatasetBadName
	}

	src, err := tabular.Open(sourceFile, r)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return nil, ErrDatasetUnsupported
		}
		return nil, &engine.ParseFailure{Source: sourceFile, Cause: err}
	}

	if _, err := s.repo.Dataset.GetBySource(ctx, sourceFile); err == nil {
		return nil, ErrDatasetDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询数据集失败", zap.String("source_file", sourceFile), zap.Error(err))
		return nil, err
	}

	records, report, err := s.normalizer.NormalizeFrom(src, sourceFile)
	if err != nil {
		s.logger.Warn("课表文件解析失败", zap.String("source_file", sourceFile), zap.Error(err))
		return nil, err
	}
	s.recorder.IngestRows(report.Kept, report.Dropped)

	if len(records) == 0 {
		return nil, ErrDatasetEmpty
	}

	dataset := &model.Dataset{
		SourceFile:   sourceFile,
		RowCount:     report.Rows,
		RecordCount:  report.Kept,
		DroppedCount: report.Dropped,
	}
	if err := s.repo.Dataset.CreateWithRecords(ctx, dataset, records); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDatasetDuplicate
		}
		s.logger.Error("写入数据集失败", zap.String("source_file", sourceFile), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表文件导入完成",
		zap.String("source_file", sourceFile),
		zap.Int("rows", report.Rows),
		zap.Int("kept", report.Kept),
		zap.Int("dropped", report.Dropped),
		zap.Strings("unknown_headers", report.UnknownHeaders),
	)
	s.refreshRecordGauge(ctx)

	unknown := report.UnknownHeaders
	if unknown == nil {
		unknown = []string{}
	}
	return &dto.ImportResponse{
		Dataset:        toDatasetResponse(dataset),
		UnknownHeaders: unknown,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *datasetService) List(ctx context.Context) ([]dto.DatasetResponse, error) {
	datasets, err := s.repo.Dataset.List(ctx)
	if err != nil {
		s.logger.Error("列出数据集失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DatasetResponse, 0, len(datasets))
	for i := range datasets {
		result = append(result, toDatasetResponse(&datasets[i]))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *datasetService) Delete(ctx context.Context, sourceFile string) error {
	n, err := s.repo.Dataset.DeleteBySource(ctx, sourceFile)
	if err != nil {
		s.logger.Error("删除数据集失败", zap.String("source_file", sourceFile), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrDatasetNotFound
	}
	s.logger.Info("数据集已删除", zap.String("source_file", sourceFile))
	s.refreshRecordGauge(ctx)
	return nil
}

// ────────────────────── Clear ──────────────────────

func (s *datasetService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.Dataset.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("清空数据集失败", zap.Error(err))
		return 0, err
	}
	s.logger.Info("已清空全部数据集", zap.Int64("deleted", n))
	s.recorder.SetRecords(0)
	return n, nil
}

// refreshRecordGauge 同步当前记录总数指标，失败只记日志
func (s *datasetService) refreshRecordGauge(ctx context.Context) {
	if s.recorder == nil {
		return
	}
	n, err := s.repo.CourseRecord.Count(ctx)
	if err != nil {
		s.logger.Warn("统计课程记录数失败", zap.Error(err))
		return
	}
	s.recorder.SetRecords(n)
}

func toDatasetResponse(d *model.Dataset) dto.DatasetResponse {
	return dto.DatasetResponse{
		ID:           d.DatasetID,
		SourceFile:   d.SourceFile,
		RowCount:     d.RowCount,
		RecordCount:  d.RecordCount,
		DroppedCount: d.DroppedCount,
		CreatedAt:    formatTime(d.CreatedAt),
	}
}
