package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/repository"
)

// defaultRoomTop 教室统计默认条数
const defaultRoomTop = 20

// AnalyticsService 统计分析业务接口
type AnalyticsService interface {
	Heatmap(ctx context.Context) (*dto.HeatmapResponse, error)
	Rooms(ctx context.Context, top int) ([]dto.RoomUsageResponse, error)
	Departments(ctx context.Context) ([]dto.DeptCountResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger}
}

func (s *analyticsService) Heatmap(ctx context.Context) (*dto.HeatmapResponse, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}

	hm := engine.Density(records)
	cells := make([]dto.HeatCellResponse, 0, len(hm.Cells))
	for _, c := range hm.Cells {
		cells = append(cells, dto.HeatCellResponse{Day: c.Day.String(), Hour: c.Hour, Count: c.Count})
	}
	return &dto.HeatmapResponse{
		Days:  weekdayNames(hm.Days),
		Hours: hm.Hours,
		Cells: cells,
		Peak:  hm.Peak,
	}, nil
}

func (s *analyticsService) Rooms(ctx context.Context, top int) ([]dto.RoomUsageResponse, error) {
	if top <= 0 {
		top = defaultRoomTop
	}
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}

	usage := engine.RoomUtilisation(records, top)
	result := make([]dto.RoomUsageResponse, 0, len(usage))
	for _, u := range usage {
		result = append(result, dto.RoomUsageResponse{
			Room:     u.Room,
			Sessions: u.Sessions,
			Hours:    fmt.Sprintf("%.1f", float64(u.Minutes)/60),
		})
	}
	return result, nil
}

func (s *analyticsService) Departments(ctx context.Context) ([]dto.DeptCountResponse, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}

	dist := engine.DeptDistribution(records)
	result := make([]dto.DeptCountResponse, 0, len(dist))
	for _, d := range dist {
		result = append(result, dto.DeptCountResponse{Dept: d.Dept, Courses: d.Courses})
	}
	return result, nil
}
