package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/repository"
)

// ── 课程记录模块业务错误 ──

var (
	ErrRecordInvalidNodeType = errors.New("关联类型只能为 course / instructor / room")
)

// RecordService 课程记录浏览业务接口
type RecordService interface {
	List(ctx context.Context, req *dto.RecordListRequest) ([]dto.CourseRecordResponse, int64, error)
	Departments(ctx context.Context) ([]string, error)
	Related(ctx context.Context, req *dto.RelatedRequest) ([]dto.CourseRecordResponse, error)
}

type recordService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例
func NewRecordService(repo *repository.Repository, logger *zap.Logger) RecordService {
	return &recordService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *recordService) List(ctx context.Context, req *dto.RecordListRequest) ([]dto.CourseRecordResponse, int64, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, 0, err
	}

	filtered := engine.FilterRecords(records, req.Dept, req.Q)
	total := int64(len(filtered))

	start, end := req.Bounds(len(filtered))
	return toRecordResponses(filtered[start:end]), total, nil
}

// ────────────────────── Departments ──────────────────────

func (s *recordService) Departments(ctx context.Context) ([]string, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}
	return engine.Departments(records), nil
}

// ────────────────────── Related ──────────────────────

func (s *recordService) Related(ctx context.Context, req *dto.RelatedRequest) ([]dto.CourseRecordResponse, error) {
	nodeType, ok := engine.ParseNodeType(req.Type)
	if !ok {
		return nil, ErrRecordInvalidNodeType
	}

	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}
	return toRecordResponses(engine.Related(records, nodeType, req.Label)), nil
}
