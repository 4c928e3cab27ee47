package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"optimus/backend/internal/model"
	"optimus/backend/internal/repository"
	pkgerrors "optimus/backend/pkg/errors"
)

// ── Mock DatasetRepository ──
//
// 与 mockCourseRecordRepo 共享记录存储，模拟外键级联删除。

type mockDatasetRepo struct {
	datasets map[string]*model.Dataset
	records  *mockCourseRecordRepo
	seq      int
	failErr  error
}

func newMockDatasetRepo(records *mockCourseRecordRepo) *mockDatasetRepo {
	return &mockDatasetRepo{datasets: make(map[string]*model.Dataset), records: records}
}

func (m *mockDatasetRepo) CreateWithRecords(_ context.Context, dataset *model.Dataset, records []model.CourseRecord) error {
	if m.failErr != nil {
		return m.failErr
	}
	if _, ok := m.datasets[dataset.SourceFile]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	if dataset.DatasetID == "" {
		dataset.DatasetID = fmt.Sprintf("ds-%d", m.seq)
	}
	dataset.CreatedAt = time.Date(2024, 9, 1, 0, m.seq, 0, 0, time.UTC)
	m.datasets[dataset.SourceFile] = dataset
	for i := range records {
		records[i].DatasetID = dataset.DatasetID
	}
	m.records.records = append(m.records.records, records...)
	return nil
}

func (m *mockDatasetRepo) GetBySource(_ context.Context, sourceFile string) (*model.Dataset, error) {
	if d, ok := m.datasets[sourceFile]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDatasetRepo) List(_ context.Context) ([]model.Dataset, error) {
	result := make([]model.Dataset, 0, len(m.datasets))
	for _, d := range m.datasets {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockDatasetRepo) DeleteBySource(_ context.Context, sourceFile string) (int64, error) {
	if _, ok := m.datasets[sourceFile]; !ok {
		return 0, nil
	}
	delete(m.datasets, sourceFile)
	kept := m.records.records[:0]
	for _, r := range m.records.records {
		if r.SourceFile != sourceFile {
			kept = append(kept, r)
		}
	}
	m.records.records = kept
	return 1, nil
}

func (m *mockDatasetRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.datasets))
	m.datasets = make(map[string]*model.Dataset)
	m.records.records = nil
	return n, nil
}

// ── Mock CourseRecordRepository ──

type mockCourseRecordRepo struct {
	records []model.CourseRecord
	listErr error
}

func newMockCourseRecordRepo(records ...model.CourseRecord) *mockCourseRecordRepo {
	return &mockCourseRecordRepo{records: records}
}

func (m *mockCourseRecordRepo) ListAll(_ context.Context) ([]model.CourseRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.CourseRecord(nil), m.records...), nil
}

func (m *mockCourseRecordRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.records)), nil
}

// ── Mock MeetingGroupRepository ──

type mockMeetingGroupRepo struct {
	groups map[string]*model.MeetingGroup
	seq    int
}

func newMockMeetingGroupRepo() *mockMeetingGroupRepo {
	return &mockMeetingGroupRepo{groups: make(map[string]*model.MeetingGroup)}
}

func (m *mockMeetingGroupRepo) Create(_ context.Context, group *model.MeetingGroup) error {
	for _, g := range m.groups {
		if g.Name == group.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if group.GroupID == "" {
		group.GroupID = fmt.Sprintf("grp-%d", m.seq)
	}
	if group.Version == 0 {
		group.Version = 1
	}
	cp := *group
	m.groups[group.GroupID] = &cp
	return nil
}

func (m *mockMeetingGroupRepo) GetByID(_ context.Context, id string) (*model.MeetingGroup, error) {
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMeetingGroupRepo) GetByName(_ context.Context, name string) (*model.MeetingGroup, error) {
	for _, g := range m.groups {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMeetingGroupRepo) List(_ context.Context) ([]model.MeetingGroup, error) {
	result := make([]model.MeetingGroup, 0, len(m.groups))
	for _, g := range m.groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMeetingGroupRepo) Update(_ context.Context, group *model.MeetingGroup) error {
	stored, ok := m.groups[group.GroupID]
	if !ok || stored.Version != group.Version {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version++
	cp := *group
	m.groups[group.GroupID] = &cp
	return nil
}

func (m *mockMeetingGroupRepo) Delete(_ context.Context, id string) error {
	delete(m.groups, id)
	return nil
}

// ── 测试辅助 ──

type testRepos struct {
	repo    *repository.Repository
	dataset *mockDatasetRepo
	records *mockCourseRecordRepo
	groups  *mockMeetingGroupRepo
}

func newTestRepos(records ...model.CourseRecord) *testRepos {
	rec := newMockCourseRecordRepo(records...)
	ds := newMockDatasetRepo(rec)
	grp := newMockMeetingGroupRepo()
	return &testRepos{
		repo: &repository.Repository{
			Dataset:      ds,
			CourseRecord: rec,
			MeetingGroup: grp,
		},
		dataset: ds,
		records: rec,
		groups:  grp,
	}
}

var testLogger = zap.NewNop()

// course 构造带时段的课程记录，slots 为 (星期, 开始分钟, 结束分钟) 三元组
func course(id, code, instructor, room string, slots ...[3]int) model.CourseRecord {
	rec := model.CourseRecord{
		RecordID:   id,
		SourceFile: "fall.csv",
		CourseCode: code,
		CourseName: code + " Lecture",
		Instructor: instructor,
		Room:       room,
		Dept:       code[:3],
	}
	for _, s := range slots {
		slot, err := model.NewCourseSlot(model.Weekday(s[0]), s[1], s[2])
		if err != nil {
			panic(err)
		}
		rec.Slots = append(rec.Slots, slot)
	}
	return rec
}
