package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
)

func setupTestTopicService() (*topicService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewTopicService(repo, zap.NewNop()).(*topicService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, mocks
}

func seedResources(t *testing.T, m *mockRepos, subject *model.Subject, topic *model.Topic, total, completed int) {
	t.Helper()
	for i := 0; i < total; i++ {
		id := topic.ID
		r := &model.Resource{SubjectID: subject.ID, TopicID: &id, Title: "r", Type: model.ResourcePYQ, Completed: i < completed}
		if err := m.resource.Create(context.Background(), r); err != nil {
			t.Fatalf("创建资料失败: %v", err)
		}
	}
}

func TestTopicService_Create_ConfidentStampsRevision(t *testing.T) {
	svc, mocks := setupTestTopicService()
	s := seedSubject(t, mocks, "user-1", "A")

	resp, err := svc.Create(context.Background(), s.ID.Hex(), &dto.CreateTopicRequest{Name: "特征值", Status: "confident"}, "user-1")
	if err != nil {
		t.Fatalf("创建应成功: %v", err)
	}
	if resp.LastRevisedAt == nil || *resp.LastRevisedAt != "2026-03-01T09:00:00Z" {
		t.Errorf("confident 应记录复习时间，实际: %v", resp.LastRevisedAt)
	}

	resp, err = svc.Create(context.Background(), s.ID.Hex(), &dto.CreateTopicRequest{Name: "行列式"}, "user-1")
	if err != nil {
		t.Fatalf("创建应成功: %v", err)
	}
	if resp.Status != string(model.TopicNotStarted) || resp.LastRevisedAt != nil {
		t.Errorf("默认状态应为 not-started 且无复习时间，实际: %+v", resp)
	}
}

func TestTopicService_Create_Forbidden(t *testing.T) {
	svc, mocks := setupTestTopicService()
	s := seedSubject(t, mocks, "user-1", "A")

	_, err := svc.Create(context.Background(), s.ID.Hex(), &dto.CreateTopicRequest{Name: "x"}, "user-2")
	if !errors.Is(err, ErrSubjectForbidden) {
		t.Errorf("期望 ErrSubjectForbidden，实际: %v", err)
	}
}

func TestTopicService_ListBySubject_Stats(t *testing.T) {
	svc, mocks := setupTestTopicService()
	s := seedSubject(t, mocks, "user-1", "A")
	topic := &model.Topic{SubjectID: s.ID, Name: "极限", Status: model.TopicLearning}
	_ = mocks.topic.Create(context.Background(), topic)
	seedResources(t, mocks, s, topic, 4, 3)

	list, err := svc.ListBySubject(context.Background(), s.ID.Hex(), "user-1")
	if err != nil {
		t.Fatalf("列表应成功: %v", err)
	}
	if len(list) != 1 || list[0].Stats == nil {
		t.Fatalf("应返回带统计的知识点: %+v", list)
	}
	if list[0].Stats.TotalResources != 4 || list[0].Stats.CompletedResources != 3 || list[0].Stats.CompletionRate != 75 {
		t.Errorf("统计不符: %+v", list[0].Stats)
	}
}

func TestTopicService_WeakTopics(t *testing.T) {
	svc, mocks := setupTestTopicService()
	ctx := context.Background()
	s := seedSubject(t, mocks, "user-1", "A")

	empty := &model.Topic{SubjectID: s.ID, Name: "a-未开始无资料", Status: model.TopicNotStarted}
	lowRate := &model.Topic{SubjectID: s.ID, Name: "b-未开始有资料", Status: model.TopicNotStarted}
	practice := &model.Topic{SubjectID: s.ID, Name: "c-需练习", Status: model.TopicNeedsPractice}
	solid := &model.Topic{SubjectID: s.ID, Name: "d-已掌握", Status: model.TopicConfident}
	for _, tp := range []*model.Topic{empty, lowRate, practice, solid} {
		_ = mocks.topic.Create(ctx, tp)
	}
	seedResources(t, mocks, s, lowRate, 3, 0)
	seedResources(t, mocks, s, solid, 2, 2)

	weak, err := svc.WeakTopics(ctx, s.ID.Hex(), "user-1")
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}

	reasons := make(map[string]string)
	for _, w := range weak {
		reasons[w.Name] = w.Reason
	}
	if _, ok := reasons[empty.Name]; ok {
		t.Error("未开始且无资料的知识点不应视为薄弱")
	}
	if _, ok := reasons[solid.Name]; ok {
		t.Error("已掌握且资料全部完成的知识点不应视为薄弱")
	}
	if reasons[lowRate.Name] != "Low completion rate" {
		t.Errorf("期望 Low completion rate，实际: %q", reasons[lowRate.Name])
	}
	// 无资料时完成率为 0，同样低于阈值
	if reasons[practice.Name] != "Low completion rate" {
		t.Errorf("需练习知识点原因不符: %q", reasons[practice.Name])
	}
}

func TestTopicService_Delete_UnlinksResources(t *testing.T) {
	svc, mocks := setupTestTopicService()
	ctx := context.Background()
	s := seedSubject(t, mocks, "user-1", "A")
	topic := &model.Topic{SubjectID: s.ID, Name: "极限"}
	_ = mocks.topic.Create(ctx, topic)
	seedResources(t, mocks, s, topic, 2, 0)

	if err := svc.Delete(ctx, topic.ID.Hex(), "user-1"); err != nil {
		t.Fatalf("删除应成功: %v", err)
	}
	for _, r := range mocks.resource.docs {
		if r.TopicID != nil {
			t.Error("资料与已删除知识点的关联应被解除")
		}
	}
	if len(mocks.resource.docs) != 2 {
		t.Error("资料本身应保留")
	}
}

func TestTopicService_UpdateStatus_NotFound(t *testing.T) {
	svc, _ := setupTestTopicService()

	_, err := svc.UpdateStatus(context.Background(), "bad-id", model.TopicConfident, "user-1")
	if !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("期望 ErrTopicNotFound，实际: %v", err)
	}
}
