package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/repository"
	"optimus/backend/pkg/metrics"
)

// ── 冲突检测模块业务错误 ──

var (
	ErrConflictInvalidKind = errors.New("冲突类型只能为 INSTRUCTOR 或 ROOM")
)

// ConflictService 冲突检测业务接口
type ConflictService interface {
	// List 对当前全部记录做冲突检测；kind 为空时返回全部类型
	List(ctx context.Context, kind string) (*dto.ConflictListResponse, error)
	// Detect 返回原始检测结果，供导出使用
	Detect(ctx context.Context) ([]engine.Conflict, error)
}

type conflictService struct {
	repo     *repository.Repository
	detector *engine.ConflictDetector
	recorder *metrics.Recorder
	logger   *zap.Logger
}

// NewConflictService 创建 ConflictService 实例
func NewConflictService(repo *repository.Repository, detector *engine.ConflictDetector, recorder *metrics.Recorder, logger *zap.Logger) ConflictService {
	return &conflictService{repo: repo, detector: detector, recorder: recorder, logger: logger}
}

func (s *conflictService) Detect(ctx context.Context) ([]engine.Conflict, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}

	conflicts := s.detector.Detect(records)
	for kind, n := range engine.CountByKind(conflicts) {
		s.recorder.ConflictsDetected(string(kind), n)
	}
	return conflicts, nil
}

func (s *conflictService) List(ctx context.Context, kind string) (*dto.ConflictListResponse, error) {
	var want engine.ConflictKind
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "":
	case string(engine.ConflictInstructor):
		want = engine.ConflictInstructor
	case string(engine.ConflictRoom):
		want = engine.ConflictRoom
	default:
		return nil, ErrConflictInvalidKind
	}

	conflicts, err := s.Detect(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for k, n := range engine.CountByKind(conflicts) {
		counts[string(k)] = n
	}

	list := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		if want != "" && c.Kind != want {
			continue
		}
		list = append(list, dto.ConflictResponse{
			Kind:   string(c.Kind),
			Entity: c.Entity,
			Source: toOccurrenceResponse(c.Source),
			Target: toOccurrenceResponse(c.Target),
		})
	}

	return &dto.ConflictListResponse{List: list, Counts: counts, Total: len(conflicts)}, nil
}
