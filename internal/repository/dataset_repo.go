package repository

import (
	"context"

	"gorm.io/gorm"

	"optimus/backend/internal/model"
)

// insertBatchSize 批量写入课程记录的批大小
const insertBatchSize = 200

// DatasetRepository 数据集数据访问接口
type DatasetRepository interface {
	// CreateWithRecords 在同一事务中写入数据集及其课程记录（含时段）
	CreateWithRecords(ctx context.Context, dataset *model.Dataset, records []model.CourseRecord) error
	GetBySource(ctx context.Context, sourceFile string) (*model.Dataset, error)
	List(ctx context.Context) ([]model.Dataset, error)
	// DeleteBySource 删除数据集，课程记录与时段由外键级联删除
	DeleteBySource(ctx context.Context, sourceFile string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type datasetRepo struct {
	db *gorm.DB
}

// NewDatasetRepo 创建 DatasetRepository 实例
func NewDatasetRepo(db *gorm.DB) DatasetRepository {
	return &datasetRepo{db: db}
}

func (r *datasetRepo) CreateWithRecords(ctx context.Context, dataset *model.Dataset, records []model.CourseRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dataset).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			records[i].DatasetID = dataset.DatasetID
		}
		return tx.CreateInBatches(&records, insertBatchSize).Error
	})
}

func (r *datasetRepo) GetBySource(ctx context.Context, sourceFile string) (*model.Dataset, error) {
	var dataset model.Dataset
	err := r.db.WithContext(ctx).
		Where("source_file = ?", sourceFile).
		First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (r *datasetRepo) List(ctx context.Context) ([]model.Dataset, error) {
	var datasets []model.Dataset
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&datasets).Error
	return datasets, err
}

func (r *datasetRepo) DeleteBySource(ctx context.Context, sourceFile string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("source_file = ?", sourceFile).
		Delete(&model.Dataset{})
	return result.RowsAffected, result.Error
}

func (r *datasetRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Dataset{})
	return result.RowsAffected, result.Error
}
