package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
	"optimus/backend/internal/repository"
	pkgerrors "optimus/backend/pkg/errors"
)

// ── 共同空闲时间模块业务错误 ──

var (
	ErrGroupNotFound       = errors.New("人员组不存在")
	ErrGroupNameTaken      = errors.New("人员组名称已存在")
	ErrGroupTooFewMembers  = errors.New("人员组至少需要 2 名成员")
	ErrGroupNameRequired   = errors.New("人员组名称不能为空")
	ErrGroupVersionExpired = pkgerrors.ErrOptimisticLock
)

// minGroupMembers 人员组最少成员数
const minGroupMembers = 2

// instructorSearchLimit 名录检索最多返回条数
const instructorSearchLimit = 50

// AvailabilityService 共同空闲时间业务接口
type AvailabilityService interface {
	Instructors(ctx context.Context, q string) ([]string, error)
	Compute(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	// Free 返回原始计算结果，供导出使用
	Free(ctx context.Context, req *dto.AvailabilityRequest) (engine.Availability, error)

	ListGroups(ctx context.Context) ([]dto.GroupResponse, error)
	CreateGroup(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	UpdateGroup(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, id string) error
}

type availabilityService struct {
	repo   *repository.Repository
	engine *engine.AvailabilityEngine
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, avail *engine.AvailabilityEngine, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, engine: avail, logger: logger}
}

// ────────────────────── Instructors ──────────────────────

func (s *availabilityService) Instructors(ctx context.Context, q string) ([]string, error) {
	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return nil, err
	}

	directory := engine.Instructors(records)
	if strings.TrimSpace(q) == "" {
		return directory, nil
	}
	return engine.SearchInstructors(directory, q, instructorSearchLimit), nil
}

// ════════════════════════════════════════════════════════════
// Compute — 计算选中人员的共同空闲时间
// ════════════════════════════════════════════════════════════

func (s *availabilityService) Free(ctx context.Context, req *dto.AvailabilityRequest) (engine.Availability, error) {
	people := append([]string(nil), req.People...)
	if req.GroupID != "" {
		group, err := s.repo.MeetingGroup.GetByID(ctx, req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.Availability{}, ErrGroupNotFound
			}
			s.logger.Error("查询人员组失败", zap.String("id", req.GroupID), zap.Error(err))
			return engine.Availability{}, err
		}
		people = append(people, group.Members...)
	}

	records, err := s.repo.CourseRecord.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程记录失败", zap.Error(err))
		return engine.Availability{}, err
	}
	return s.engine.Compute(records, people), nil
}

func (s *availabilityService) Compute(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	result, err := s.Free(ctx, req)
	if err != nil {
		return nil, err
	}

	m := result.Matrix
	rows := make([]dto.MatrixRowResponse, 0, len(m.Window.Days))
	for _, r := range m.Rows() {
		cells := make([]dto.MatrixCellResponse, 0, len(r.Cells))
		for i, c := range r.Cells {
			cells = append(cells, dto.MatrixCellResponse{Hour: r.Hours[i], Busy: c.Busy, Occupants: c.Occupants})
		}
		rows = append(rows, dto.MatrixRowResponse{Day: r.Day.String(), Cells: cells})
	}

	return &dto.AvailabilityResponse{
		Window: dto.WindowResponse{
			Days:      weekdayNames(m.Window.Days),
			StartHour: m.Window.StartHour,
			EndHour:   m.Window.EndHour,
		},
		Selected: m.Selected,
		Matrix:   rows,
		Free:     toFreeSlotResponses(result.Free),
		Ranges:   toFreeSlotResponses(engine.CoalesceFreeSlots(result.Free)),
	}, nil
}

// ────────────────────── Groups ──────────────────────

func (s *availabilityService) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.MeetingGroup.List(ctx)
	if err != nil {
		s.logger.Error("列出人员组失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, toGroupResponse(&groups[i]))
	}
	return result, nil
}

func (s *availabilityService) CreateGroup(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	members := cleanMembers(req.Members)
	if len(members) < minGroupMembers {
		return nil, ErrGroupTooFewMembers
	}

	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	group := &model.MeetingGroup{Name: name, Members: model.StringArray(members)}
	if err := s.repo.MeetingGroup.Create(ctx, group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupNameTaken
		}
		s.logger.Error("创建人员组失败", zap.Error(err))
		return nil, err
	}

	resp := toGroupResponse(group)
	return &resp, nil
}

func (s *availabilityService) UpdateGroup(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.repo.MeetingGroup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询人员组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if req.Version != 0 && req.Version != group.Version {
		return nil, ErrGroupVersionExpired
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrGroupNameRequired
		}
		if name != group.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
		group.Name = name
	}
	if req.Members != nil {
		members := cleanMembers(req.Members)
		if len(members) < minGroupMembers {
			return nil, ErrGroupTooFewMembers
		}
		group.Members = model.StringArray(members)
	}

	if err := s.repo.MeetingGroup.Update(ctx, group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupNameTaken
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新人员组失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toGroupResponse(group)
	return &resp, nil
}

func (s *availabilityService) DeleteGroup(ctx context.Context, id string) error {
	if _, err := s.repo.MeetingGroup.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询人员组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.MeetingGroup.Delete(ctx, id); err != nil {
		s.logger.Error("删除人员组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ensureNameFree 名称未被其他组占用
func (s *availabilityService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.MeetingGroup.GetByName(ctx, name)
	if err == nil {
		if existing.GroupID != selfID {
			return ErrGroupNameTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询人员组失败", zap.String("name", name), zap.Error(err))
		return err
	}
	return nil
}

// cleanMembers 去空白、去重，保持顺序
func cleanMembers(members []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func toGroupResponse(g *model.MeetingGroup) dto.GroupResponse {
	members := []string(g.Members)
	if members == nil {
		members = []string{}
	}
	return dto.GroupResponse{
		ID:        g.GroupID,
		Name:      g.Name,
		Members:   members,
		Version:   g.Version,
		UpdatedAt: formatTime(g.UpdatedAt),
	}
}
