//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var (
	testDB    *gorm.DB
	testMongo *mongo.Database
)

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=semester_manager_test sslmode=disable TimeZone=UTC"
	}
	mongoURI := os.Getenv("TEST_MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27018"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}
	if err := testDB.AutoMigrate(&model.User{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试 MongoDB: %v\n", err)
		os.Exit(1)
	}
	testMongo = client.Database(fmt.Sprintf("semester_manager_test_%d", time.Now().UnixNano()))
	if err := repository.EnsureIndexes(context.Background(), testMongo); err != nil {
		fmt.Fprintf(os.Stderr, "创建索引失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = testMongo.Drop(context.Background())
	_ = client.Disconnect(context.Background())
	os.Exit(code)
}

func newRepo() *repository.Repository {
	return repository.NewRepository(testDB, testMongo)
}

func createSubject(t *testing.T, repo *repository.Repository) *model.Subject {
	t.Helper()
	s := &model.Subject{UserID: "integration-user", Name: "Operating Systems", Color: model.DefaultSubjectColor}
	s.Touch(time.Now())
	if err := repo.Subject.Create(context.Background(), s); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	return s
}

// ═══════════════════════════════════════════════════════════
// Test: User (PostgreSQL)
// ═══════════════════════════════════════════════════════════

func TestUser_EmailCaseInsensitive(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()

	email := fmt.Sprintf("Case%d@Example.com", time.Now().UnixNano())
	user := &model.User{Name: "测试用户", Email: email, PasswordHash: "$2a$10$placeholder"}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	defer testDB.Where("user_id = ?", user.UserID).Delete(&model.User{})

	found, err := repo.User.GetByEmail(ctx, "case"+email[4:])
	if err != nil {
		t.Fatalf("按邮箱查询失败: %v", err)
	}
	if found.UserID != user.UserID {
		t.Errorf("ID 不匹配: expected %s, got %s", user.UserID, found.UserID)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Subject CRUD (MongoDB)
// ═══════════════════════════════════════════════════════════

func TestSubject_CRUD(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()
	s := createSubject(t, repo)

	s.Credits = 4
	if err := repo.Subject.Update(ctx, s); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}
	got, err := repo.Subject.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("查询课程失败: %v", err)
	}
	if got.Credits != 4 {
		t.Errorf("期望 credits=4，实际=%d", got.Credits)
	}

	if err := repo.Subject.Delete(ctx, s.ID); err != nil {
		t.Fatalf("删除课程失败: %v", err)
	}
	if _, err := repo.Subject.GetByID(ctx, s.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("删除后应返回 ErrNoDocuments，实际: %v", err)
	}
	if err := repo.Subject.Delete(ctx, s.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("重复删除应返回 ErrNoDocuments，实际: %v", err)
	}
}

func TestSubject_ListByUserNewestFirst(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()
	userID := fmt.Sprintf("list-user-%d", time.Now().UnixNano())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Algorithms", "Networks", "Compilers"} {
		s := &model.Subject{UserID: userID, Name: name, Color: model.DefaultSubjectColor}
		s.Touch(base.Add(time.Duration(i) * time.Hour))
		if err := repo.Subject.Create(ctx, s); err != nil {
			t.Fatalf("创建课程失败: %v", err)
		}
	}

	got, err := repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("列出课程失败: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("期望 3 门课程，实际 %d", len(got))
	}
	want := []string{"Compilers", "Networks", "Algorithms"}
	for i, s := range got {
		if s.Name != want[i] {
			t.Errorf("第 %d 门期望 %s，实际 %s（应按创建时间倒序）", i, want[i], s.Name)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Grading scheme upsert
// ═══════════════════════════════════════════════════════════

func TestGrading_UpsertReplaces(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()
	s := createSubject(t, repo)

	first := &model.GradingScheme{SubjectID: s.ID, Components: []model.GradingItem{{Name: "Final", Weightage: 100}}}
	if err := repo.Grading.Upsert(ctx, first); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	second := &model.GradingScheme{SubjectID: s.ID, Components: []model.GradingItem{
		{Name: "Quiz", Weightage: 30}, {Name: "Exam", Weightage: 70},
	}}
	if err := repo.Grading.Upsert(ctx, second); err != nil {
		t.Fatalf("覆盖写入失败: %v", err)
	}

	got, err := repo.Grading.GetBySubject(ctx, s.ID)
	if err != nil {
		t.Fatalf("查询评分方案失败: %v", err)
	}
	if len(got.Components) != 2 {
		t.Errorf("期望 2 个评分项，实际=%d", len(got.Components))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Resource aggregation & toggle
// ═══════════════════════════════════════════════════════════

func TestResource_CountByTopicAndToggle(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()
	s := createSubject(t, repo)
	topicID := primitive.NewObjectID()

	for i, done := range []bool{true, false, false} {
		r := &model.Resource{
			SubjectID: s.ID,
			TopicID:   &topicID,
			Title:     fmt.Sprintf("PYQ %d", i),
			Type:      model.ResourcePYQ,
			Completed: done,
			Tags:      []string{},
		}
		if err := repo.Resource.Create(ctx, r); err != nil {
			t.Fatalf("创建资料失败: %v", err)
		}
	}

	counts, err := repo.Resource.CountByTopic(ctx, s.ID)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if c := counts[topicID]; c.Total != 3 || c.Completed != 1 {
		t.Errorf("期望 3/1，实际 %d/%d", c.Total, c.Completed)
	}

	list, _ := repo.Resource.List(ctx, repository.ResourceFilter{SubjectID: s.ID})
	if err := repo.Resource.SetCompleted(ctx, list[0].ID, !list[0].Completed, time.Now()); err != nil {
		t.Fatalf("切换完成状态失败: %v", err)
	}
	got, _ := repo.Resource.GetByID(ctx, list[0].ID)
	if got.Completed == list[0].Completed || got.Title != list[0].Title {
		t.Errorf("只应修改完成状态: before=%+v after=%+v", list[0], got)
	}

	if err := repo.Resource.UnlinkTopic(ctx, topicID); err != nil {
		t.Fatalf("解除关联失败: %v", err)
	}
	counts, _ = repo.Resource.CountByTopic(ctx, s.ID)
	if len(counts) != 0 {
		t.Errorf("解除关联后不应再有统计: %v", counts)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Deadline bulk priority update
// ═══════════════════════════════════════════════════════════

func TestDeadline_SetPrioritiesSkipsCompleted(t *testing.T) {
	repo := newRepo()
	ctx := context.Background()
	s := createSubject(t, repo)

	open := &model.Deadline{SubjectID: s.ID, Title: "Lab 1", Type: model.DeadlineAssignment, DueDate: time.Now(), Priority: model.PriorityLater}
	done := &model.Deadline{SubjectID: s.ID, Title: "Lab 0", Type: model.DeadlineAssignment, DueDate: time.Now(), Priority: model.PriorityLater, Completed: true}
	for _, d := range []*model.Deadline{open, done} {
		if err := repo.Deadline.Create(ctx, d); err != nil {
			t.Fatalf("创建截止事项失败: %v", err)
		}
	}

	n, err := repo.Deadline.SetPriorities(ctx, map[primitive.ObjectID]model.Priority{
		open.ID: model.PriorityOverdue,
		done.ID: model.PriorityOverdue,
	}, time.Now())
	if err != nil {
		t.Fatalf("批量更新失败: %v", err)
	}
	if n != 1 {
		t.Errorf("只应更新未完成事项，实际修改 %d 条", n)
	}

	completed := true
	list, _ := repo.Deadline.List(ctx, repository.DeadlineFilter{SubjectIDs: []primitive.ObjectID{s.ID}, Completed: &completed})
	if len(list) != 1 || list[0].Priority != model.PriorityLater {
		t.Errorf("已完成事项的优先级应保持不变: %+v", list)
	}
}
