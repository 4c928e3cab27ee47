package repository

import (
	"context"

	"gorm.io/gorm"

	"optimus/backend/internal/model"
)

// CourseRecordRepository 课程记录数据访问接口
type CourseRecordRepository interface {
	// ListAll 按数据集导入顺序、文件内行序返回全部记录（含时段）
	ListAll(ctx context.Context) ([]model.CourseRecord, error)
	Count(ctx context.Context) (int64, error)
}

type courseRecordRepo struct {
	db *gorm.DB
}

// NewCourseRecordRepo 创建 CourseRecordRepository 实例
func NewCourseRecordRepo(db *gorm.DB) CourseRecordRepository {
	return &courseRecordRepo{db: db}
}

func (r *courseRecordRepo) ListAll(ctx context.Context) ([]model.CourseRecord, error) {
	var records []model.CourseRecord
	err := r.db.WithContext(ctx).
		Select("course_records.*").
		Joins("JOIN datasets ON datasets.dataset_id = course_records.dataset_id").
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_slots.position ASC")
		}).
		Order("datasets.created_at ASC, course_records.position ASC").
		Find(&records).Error
	return records, err
}

func (r *courseRecordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CourseRecord{}).Count(&count).Error
	return count, err
}
