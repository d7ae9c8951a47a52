package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
	"semester-manager/backend/pkg/storage"
)

// ── 测试辅助 ──

type mockRepos struct {
	user       *mockUserRepo
	subject    *mockSubjectRepo
	topic      *mockTopicRepo
	resource   *mockResourceRepo
	grading    *mockGradingRepo
	score      *mockScoreRepo
	attendance *mockAttendanceRepo
	deadline   *mockDeadlineRepo
	study      *mockStudySessionRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:       newMockUserRepo(),
		subject:    &mockSubjectRepo{docs: map[primitive.ObjectID]*model.Subject{}},
		topic:      &mockTopicRepo{docs: map[primitive.ObjectID]*model.Topic{}},
		grading:    &mockGradingRepo{docs: map[primitive.ObjectID]*model.GradingScheme{}},
		score:      &mockScoreRepo{docs: map[primitive.ObjectID]*model.Score{}},
		attendance: &mockAttendanceRepo{docs: map[primitive.ObjectID]*model.Attendance{}},
		deadline:   &mockDeadlineRepo{docs: map[primitive.ObjectID]*model.Deadline{}},
		study:      &mockStudySessionRepo{docs: map[primitive.ObjectID]*model.StudySession{}},
	}
	m.resource = &mockResourceRepo{docs: map[primitive.ObjectID]*model.Resource{}}
	repo := &repository.Repository{
		User:         m.user,
		Subject:      m.subject,
		Topic:        m.topic,
		Resource:     m.resource,
		Grading:      m.grading,
		Score:        m.score,
		Attendance:   m.attendance,
		Deadline:     m.deadline,
		StudySession: m.study,
	}
	return repo, m
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	docs map[primitive.ObjectID]*model.Subject
}

func (m *mockSubjectRepo) Create(_ context.Context, s *model.Subject) error {
	ensureID(&s.ID)
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Subject, error) {
	if s, ok := m.docs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockSubjectRepo) ListByUser(_ context.Context, userID string) ([]model.Subject, error) {
	result := []model.Subject{}
	for _, s := range m.docs {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, s *model.Subject) error {
	if _, ok := m.docs[s.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	docs map[primitive.ObjectID]*model.Topic
}

func (m *mockTopicRepo) Create(_ context.Context, t *model.Topic) error {
	ensureID(&t.ID)
	cp := *t
	m.docs[t.ID] = &cp
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Topic, error) {
	if t, ok := m.docs[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockTopicRepo) ListBySubject(_ context.Context, subjectID primitive.ObjectID) ([]model.Topic, error) {
	result := []model.Topic{}
	for _, t := range m.docs {
		if t.SubjectID == subjectID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Unit != result[j].Unit {
			return result[i].Unit < result[j].Unit
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockTopicRepo) Update(_ context.Context, t *model.Topic) error {
	if _, ok := m.docs[t.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *t
	m.docs[t.ID] = &cp
	return nil
}

func (m *mockTopicRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockTopicRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, t := range m.docs {
		if t.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	docs map[primitive.ObjectID]*model.Resource
}

func (m *mockResourceRepo) Create(_ context.Context, r *model.Resource) error {
	ensureID(&r.ID)
	cp := *r
	m.docs[r.ID] = &cp
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Resource, error) {
	if r, ok := m.docs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockResourceRepo) List(_ context.Context, f repository.ResourceFilter) ([]model.Resource, error) {
	result := []model.Resource{}
	for _, r := range m.docs {
		if r.SubjectID != f.SubjectID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Completed != nil && r.Completed != *f.Completed {
			continue
		}
		if f.TopicID != nil && (r.TopicID == nil || *r.TopicID != *f.TopicID) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadDate.After(result[j].UploadDate) })
	return result, nil
}

func (m *mockResourceRepo) Update(_ context.Context, r *model.Resource) error {
	if _, ok := m.docs[r.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *r
	m.docs[r.ID] = &cp
	return nil
}

func (m *mockResourceRepo) SetCompleted(_ context.Context, id primitive.ObjectID, completed bool, at time.Time) error {
	r, ok := m.docs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	r.Completed = completed
	r.UpdatedAt = at
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockResourceRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, r := range m.docs {
		if r.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

func (m *mockResourceRepo) UnlinkTopic(_ context.Context, topicID primitive.ObjectID) error {
	for _, r := range m.docs {
		if r.TopicID != nil && *r.TopicID == topicID {
			r.TopicID = nil
		}
	}
	return nil
}

func (m *mockResourceRepo) CountByTopic(_ context.Context, subjectID primitive.ObjectID) (map[primitive.ObjectID]repository.TopicResourceCount, error) {
	counts := make(map[primitive.ObjectID]repository.TopicResourceCount)
	for _, r := range m.docs {
		if r.SubjectID != subjectID || r.TopicID == nil {
			continue
		}
		c := counts[*r.TopicID]
		c.TopicID = *r.TopicID
		c.Total++
		if r.Completed {
			c.Completed++
		}
		counts[*r.TopicID] = c
	}
	return counts, nil
}

// ── Mock GradingRepository ──

type mockGradingRepo struct {
	docs map[primitive.ObjectID]*model.GradingScheme // key: subject_id
}

func (m *mockGradingRepo) GetBySubject(_ context.Context, subjectID primitive.ObjectID) (*model.GradingScheme, error) {
	if g, ok := m.docs[subjectID]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockGradingRepo) Upsert(_ context.Context, g *model.GradingScheme) error {
	ensureID(&g.ID)
	cp := *g
	m.docs[g.SubjectID] = &cp
	return nil
}

func (m *mockGradingRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	if _, ok := m.docs[subjectID]; !ok {
		return 0, nil
	}
	delete(m.docs, subjectID)
	return 1, nil
}

// ── Mock ScoreRepository ──

type mockScoreRepo struct {
	docs map[primitive.ObjectID]*model.Score
}

func (m *mockScoreRepo) Create(_ context.Context, s *model.Score) error {
	ensureID(&s.ID)
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockScoreRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Score, error) {
	if s, ok := m.docs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockScoreRepo) ListBySubject(_ context.Context, subjectID primitive.ObjectID) ([]model.Score, error) {
	result := []model.Score{}
	for _, s := range m.docs {
		if s.SubjectID == subjectID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockScoreRepo) Update(_ context.Context, s *model.Score) error {
	if _, ok := m.docs[s.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockScoreRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockScoreRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, s := range m.docs {
		if s.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	docs map[primitive.ObjectID]*model.Attendance
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	ensureID(&a.ID)
	cp := *a
	m.docs[a.ID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Attendance, error) {
	if a, ok := m.docs[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockAttendanceRepo) List(_ context.Context, subjectID primitive.ObjectID, from, to *time.Time) ([]model.Attendance, error) {
	result := []model.Attendance{}
	for _, a := range m.docs {
		if a.SubjectID == subjectID && inRange(a.Date, from, to) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	if _, ok := m.docs[a.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *a
	m.docs[a.ID] = &cp
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockAttendanceRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, a := range m.docs {
		if a.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

// ── Mock DeadlineRepository ──

type mockDeadlineRepo struct {
	docs map[primitive.ObjectID]*model.Deadline
}

func (m *mockDeadlineRepo) Create(_ context.Context, d *model.Deadline) error {
	ensureID(&d.ID)
	cp := *d
	m.docs[d.ID] = &cp
	return nil
}

func (m *mockDeadlineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Deadline, error) {
	if d, ok := m.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockDeadlineRepo) List(_ context.Context, f repository.DeadlineFilter) ([]model.Deadline, error) {
	result := []model.Deadline{}
	for _, d := range m.docs {
		if f.SubjectIDs != nil && !containsID(f.SubjectIDs, d.SubjectID) {
			continue
		}
		if f.Completed != nil && d.Completed != *f.Completed {
			continue
		}
		if len(f.Priorities) > 0 && !containsPriority(f.Priorities, d.Priority) {
			continue
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (m *mockDeadlineRepo) Update(_ context.Context, d *model.Deadline) error {
	if _, ok := m.docs[d.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *d
	m.docs[d.ID] = &cp
	return nil
}

func (m *mockDeadlineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDeadlineRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, d := range m.docs {
		if d.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

func (m *mockDeadlineRepo) SetPriorities(_ context.Context, priorities map[primitive.ObjectID]model.Priority, at time.Time) (int64, error) {
	var n int64
	for id, p := range priorities {
		d, ok := m.docs[id]
		if !ok || d.Completed {
			continue
		}
		d.Priority = p
		d.UpdatedAt = at
		n++
	}
	return n, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsPriority(ps []model.Priority, p model.Priority) bool {
	for _, v := range ps {
		if v == p {
			return true
		}
	}
	return false
}

// ── Mock StudySessionRepository ──

type mockStudySessionRepo struct {
	docs map[primitive.ObjectID]*model.StudySession
}

func (m *mockStudySessionRepo) Create(_ context.Context, s *model.StudySession) error {
	ensureID(&s.ID)
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockStudySessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.StudySession, error) {
	if s, ok := m.docs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockStudySessionRepo) List(_ context.Context, f repository.StudySessionFilter) ([]model.StudySession, error) {
	result := []model.StudySession{}
	for _, s := range m.docs {
		if s.UserID != f.UserID {
			continue
		}
		if f.SubjectID != nil && s.SubjectID != *f.SubjectID {
			continue
		}
		if !inRange(s.Date, f.From, f.To) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockStudySessionRepo) Update(_ context.Context, s *model.StudySession) error {
	if _, ok := m.docs[s.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *mockStudySessionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.docs, id)
	return nil
}

func (m *mockStudySessionRepo) DeleteBySubject(_ context.Context, subjectID primitive.ObjectID) (int64, error) {
	var n int64
	for id, s := range m.docs {
		if s.SubjectID == subjectID {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

// ── Mock TokenStore ──

type mockTokenStore struct {
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Mock FileStorage ──

type mockFileStorage struct {
	uploaded  []string
	destroyed []string
	uploadErr error
}

func (m *mockFileStorage) Upload(_ context.Context, r io.Reader, filename string) (*storage.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	m.uploaded = append(m.uploaded, filename)
	publicID := "semester-manager/" + strings.TrimSuffix(filename, ".pdf")
	return &storage.UploadResult{
		PublicID:     publicID,
		SecureURL:    "https://res.cloudinary.com/demo/raw/upload/v1/" + publicID + ".pdf",
		ResourceType: "raw",
		Format:       "pdf",
	}, nil
}

func (m *mockFileStorage) Destroy(_ context.Context, publicID, resourceType string) error {
	m.destroyed = append(m.destroyed, resourceType+":"+publicID)
	return nil
}
