package repository

import (
	"context"

	"gorm.io/gorm"

	"optimus/backend/internal/model"
	pkgerrors "optimus/backend/pkg/errors"
)

// MeetingGroupRepository 会议人员组数据访问接口
type MeetingGroupRepository interface {
	Create(ctx context.Context, group *model.MeetingGroup) error
	GetByID(ctx context.Context, id string) (*model.MeetingGroup, error)
	GetByName(ctx context.Context, name string) (*model.MeetingGroup, error)
	List(ctx context.Context) ([]model.MeetingGroup, error)
	Update(ctx context.Context, group *model.MeetingGroup) error
	Delete(ctx context.Context, id string) error
}

type meetingGroupRepo struct {
	db *gorm.DB
}

// NewMeetingGroupRepo 创建 MeetingGroupRepository 实例
func NewMeetingGroupRepo(db *gorm.DB) MeetingGroupRepository {
	return &meetingGroupRepo{db: db}
}

func (r *meetingGroupRepo) Create(ctx context.Context, group *model.MeetingGroup) error {
	if group.Version == 0 {
		group.Version = 1
	}
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *meetingGroupRepo) GetByID(ctx context.Context, id string) (*model.MeetingGroup, error) {
	var group model.MeetingGroup
	err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *meetingGroupRepo) GetByName(ctx context.Context, name string) (*model.MeetingGroup, error) {
	var group model.MeetingGroup
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *meetingGroupRepo) List(ctx context.Context) ([]model.MeetingGroup, error) {
	var groups []model.MeetingGroup
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *meetingGroupRepo) Update(ctx context.Context, group *model.MeetingGroup) error {
	oldVersion := group.Version
	result := r.db.WithContext(ctx).
		Model(group).
		Where("group_id = ? AND version = ?", group.GroupID, oldVersion).
		Updates(map[string]interface{}{
			"name":    group.Name,
			"members": group.Members,
			"version": oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version = oldVersion + 1
	return nil
}

func (r *meetingGroupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", id).
		Delete(&model.MeetingGroup{}).Error
}
