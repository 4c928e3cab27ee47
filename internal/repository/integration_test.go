//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
	"optimus/backend/internal/repository"
	"optimus/backend/pkg/database"
	pkgerrors "optimus/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=optimus password=optimus_password dbname=optimus_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	// 使用正式迁移脚本建表，保证与线上结构一致
	if err := database.ResetMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// resetTables 清空数据表，课程记录与时段随数据集级联删除
func resetTables(t *testing.T) {
	t.Helper()
	repo := repository.NewRepository(testDB)
	if _, err := repo.Dataset.DeleteAll(context.Background()); err != nil {
		t.Fatalf("清空数据集失败: %v", err)
	}
	testDB.Unscoped().Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MeetingGroup{})
}

func newRecords(t *testing.T, source string, specs ...[2]string) []model.CourseRecord {
	t.Helper()
	ids := engine.UUIDGenerator{}
	out := make([]model.CourseRecord, 0, len(specs))
	for i, s := range specs {
		mon, err := model.NewCourseSlot(model.Monday, 540, 590)
		if err != nil {
			t.Fatal(err)
		}
		wed, err := model.NewCourseSlot(model.Wednesday, 600, 650)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, model.CourseRecord{
			RecordID:   ids.NextID(),
			SourceFile: source,
			CourseCode: s[0],
			CourseName: s[0] + " 课程",
			Instructor: s[1],
			Room:       "R1",
			Dept:       engine.DeriveDept(s[0]),
			Position:   i,
			Slots:      []model.CourseSlot{mon, wed},
		})
	}
	return out
}

func importDataset(t *testing.T, repo *repository.Repository, source string, records []model.CourseRecord) *model.Dataset {
	t.Helper()
	ds := &model.Dataset{SourceFile: source, RowCount: len(records), RecordCount: len(records)}
	if err := repo.Dataset.CreateWithRecords(context.Background(), ds, records); err != nil {
		t.Fatalf("导入数据集失败: %v", err)
	}
	return ds
}

// ═══════════════════════════════════════════════════════════
// Test: Dataset / CourseRecord
// ═══════════════════════════════════════════════════════════

func TestDataset_CreateAndListInOrder(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	importDataset(t, repo, "fall.csv", newRecords(t, "fall.csv", [2]string{"CSE 101", "Alice"}, [2]string{"MATH 201", "Bob"}))
	importDataset(t, repo, "spring.csv", newRecords(t, "spring.csv", [2]string{"PHY 110", "Carol"}))

	records, err := repo.CourseRecord.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll 失败: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("期望 3 条记录，实际 %d", len(records))
	}
	wantCodes := []string{"CSE 101", "MATH 201", "PHY 110"}
	for i, r := range records {
		if r.CourseCode != wantCodes[i] {
			t.Errorf("第 %d 条记录期望 %s，实际 %s", i, wantCodes[i], r.CourseCode)
		}
		if len(r.Slots) != 2 || r.Slots[0].Day != model.Monday || r.Slots[1].Day != model.Wednesday {
			t.Errorf("%s 的时段未按顺序加载: %+v", r.CourseCode, r.Slots)
		}
	}

	n, err := repo.CourseRecord.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count 期望 3，实际 %d (%v)", n, err)
	}

	datasets, err := repo.Dataset.List(ctx)
	if err != nil || len(datasets) != 2 || datasets[0].SourceFile != "fall.csv" {
		t.Errorf("数据集列表不符合预期: %+v (%v)", datasets, err)
	}
}

func TestDataset_DuplicateSource(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)

	importDataset(t, repo, "fall.csv", newRecords(t, "fall.csv", [2]string{"CSE 101", "Alice"}))

	dup := &model.Dataset{SourceFile: "fall.csv"}
	err := repo.Dataset.CreateWithRecords(context.Background(), dup, newRecords(t, "fall.csv", [2]string{"CSE 102", "Bob"}))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("期望 ErrDuplicatedKey，实际 %v", err)
	}

	// 事务回滚：第二份文件的记录不应写入
	n, _ := repo.CourseRecord.Count(context.Background())
	if n != 1 {
		t.Errorf("期望仍为 1 条记录，实际 %d", n)
	}
}

func TestDataset_DeleteCascades(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	importDataset(t, repo, "fall.csv", newRecords(t, "fall.csv", [2]string{"CSE 101", "Alice"}, [2]string{"CSE 102", "Bob"}))
	importDataset(t, repo, "spring.csv", newRecords(t, "spring.csv", [2]string{"PHY 110", "Carol"}))

	affected, err := repo.Dataset.DeleteBySource(ctx, "fall.csv")
	if err != nil || affected != 1 {
		t.Fatalf("DeleteBySource 期望删除 1 个数据集，实际 %d (%v)", affected, err)
	}

	records, _ := repo.CourseRecord.ListAll(ctx)
	if len(records) != 1 || records[0].SourceFile != "spring.csv" {
		t.Fatalf("级联删除后记录不符合预期: %+v", records)
	}

	var slots int64
	testDB.Model(&model.CourseSlot{}).Count(&slots)
	if slots != 2 {
		t.Errorf("期望剩余 2 个时段，实际 %d", slots)
	}

	affected, err = repo.Dataset.DeleteBySource(ctx, "missing.csv")
	if err != nil || affected != 0 {
		t.Errorf("删除不存在的数据集应影响 0 行，实际 %d (%v)", affected, err)
	}

	if _, err := repo.Dataset.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll 失败: %v", err)
	}
	n, _ := repo.CourseRecord.Count(ctx)
	if n != 0 {
		t.Errorf("清空后期望 0 条记录，实际 %d", n)
	}
}

func TestDataset_LongTextColumns(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	records := newRecords(t, "long.csv", [2]string{"CSE 101", strings.TrimSuffix(strings.Repeat("Instructor Name, ", 80), ", ")})
	records[0].CourseName = strings.Repeat("Advanced Topics ", 40)
	records[0].Room = strings.Repeat("Building B Annex ", 10)
	importDataset(t, repo, "long.csv", records)

	got, err := repo.CourseRecord.ListAll(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListAll 期望 1 条记录，实际 %d (%v)", len(got), err)
	}
	if got[0].Instructor != records[0].Instructor || got[0].CourseName != records[0].CourseName || got[0].Room != records[0].Room {
		t.Error("长文本字段应原样保存")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	if err := txRepo.MeetingGroup.Create(ctx, &model.MeetingGroup{Name: "教务组", Members: model.StringArray{"Alice", "Bob"}}); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.MeetingGroup.GetByName(ctx, "教务组"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("回滚后不应查到人员组，实际 err=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: MeetingGroup Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestMeetingGroup_OptimisticLock(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	group := &model.MeetingGroup{Name: "教务组", Members: model.StringArray{"Alice", "Bob Smith"}}
	if err := repo.MeetingGroup.Create(ctx, group); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if group.Version != 1 || group.GroupID == "" {
		t.Fatalf("创建后期望 version=1 且有 ID，实际 %+v", group)
	}

	first, _ := repo.MeetingGroup.GetByID(ctx, group.GroupID)
	second, _ := repo.MeetingGroup.GetByID(ctx, group.GroupID)

	first.Members = model.StringArray{"Alice"}
	if err := repo.MeetingGroup.Update(ctx, first); err != nil {
		t.Fatalf("第一次更新失败: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("期望 version=2，实际 %d", first.Version)
	}

	second.Name = "过期的修改"
	if err := repo.MeetingGroup.Update(ctx, second); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock，实际 %v", err)
	}

	got, _ := repo.MeetingGroup.GetByID(ctx, group.GroupID)
	if got.Name != "教务组" || len(got.Members) != 1 || got.Members[0] != "Alice" {
		t.Errorf("数据不符合预期: %+v", got)
	}
}

func TestMeetingGroup_SoftDeleteFreesName(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	group := &model.MeetingGroup{Name: "教务组", Members: model.StringArray{"Alice", "Bob"}}
	if err := repo.MeetingGroup.Create(ctx, group); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if err := repo.MeetingGroup.Create(ctx, &model.MeetingGroup{Name: "教务组", Members: model.StringArray{"Carol", "Dan"}}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("同名人员组期望 ErrDuplicatedKey，实际 %v", err)
	}

	if err := repo.MeetingGroup.Delete(ctx, group.GroupID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := repo.MeetingGroup.GetByID(ctx, group.GroupID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("软删除后不应查到，实际 err=%v", err)
	}

	// 唯一索引只约束未删除的行
	if err := repo.MeetingGroup.Create(ctx, &model.MeetingGroup{Name: "教务组", Members: model.StringArray{"Carol", "Dan"}}); err != nil {
		t.Fatalf("软删除后应可复用名称: %v", err)
	}
	groups, _ := repo.MeetingGroup.List(ctx)
	if len(groups) != 1 || groups[0].Members[0] != "Carol" {
		t.Errorf("列表不符合预期: %+v", groups)
	}
}
