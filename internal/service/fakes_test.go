package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"bolsas/internal/cache"
	"bolsas/internal/model"
	"bolsas/internal/repository"
)

var fakeSeq int

func nextID() string {
	fakeSeq++
	return fmt.Sprintf("%024x", fakeSeq)
}

type fakeAnnouncementRepo struct {
	items map[string]*model.Announcement
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{items: map[string]*model.Announcement{}}
}

func (r *fakeAnnouncementRepo) Create(_ context.Context, a *model.Announcement) (string, error) {
	a.ID = nextID()
	a.CreatedAt = time.Now()
	cp := *a
	r.items[a.ID] = &cp
	return a.ID, nil
}

func (r *fakeAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAnnouncementRepo) List(context.Context) ([]*model.AnnouncementSummary, error) {
	out := []*model.AnnouncementSummary{}
	for _, a := range r.items {
		out = append(out, &model.AnnouncementSummary{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeAnnouncementRepo) ListOpen(_ context.Context, now time.Time) ([]*model.Announcement, error) {
	out := []*model.Announcement{}
	for _, a := range r.items {
		if a.EnrollmentOpen(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) ListClosed(_ context.Context, now time.Time) ([]*model.Announcement, error) {
	out := []*model.Announcement{}
	for _, a := range r.items {
		if a.EnrollmentEnd.Before(now) && !a.Finalized {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	if _, ok := r.items[a.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeAnnouncementRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.items, id)
	return nil
}

func (r *fakeAnnouncementRepo) MarkFinalized(_ context.Context, id string) (bool, error) {
	a, ok := r.items[id]
	if !ok || a.Finalized {
		return false, nil
	}
	a.Finalized = true
	return true, nil
}

type fakeApplicationRepo struct {
	items map[string]*model.Application
	order []string
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: map[string]*model.Application{}}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *model.Application) (string, error) {
	app.ID = nextID()
	cp := *app
	r.items[app.ID] = &cp
	r.order = append(r.order, app.ID)
	return app.ID, nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	app, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *app
	return &cp, nil
}

func (r *fakeApplicationRepo) filter(keep func(*model.Application) bool) []*model.Application {
	out := []*model.Application{}
	for _, id := range r.order {
		if app, ok := r.items[id]; ok && keep(app) {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeApplicationRepo) ListByStatus(_ context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	return r.filter(func(a *model.Application) bool { return a.Status == status }), nil
}

func (r *fakeApplicationRepo) ListByUser(_ context.Context, userID string, status model.ApplicationStatus) ([]*model.Application, error) {
	return r.filter(func(a *model.Application) bool {
		return a.UserID == userID && (status == "" || a.Status == status)
	}), nil
}

func (r *fakeApplicationRepo) ListByAnnouncement(_ context.Context, announcementID string, statuses ...model.ApplicationStatus) ([]*model.Application, error) {
	return r.filter(func(a *model.Application) bool {
		if a.AnnouncementID != announcementID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if a.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeApplicationRepo) Update(_ context.Context, app *model.Application) error {
	if _, ok := r.items[app.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *app
	r.items[app.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) SetStatus(_ context.Context, ids []string, status model.ApplicationStatus) error {
	for _, id := range ids {
		if app, ok := r.items[id]; ok {
			app.Status = status
		}
	}
	return nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeDocumentRepo struct {
	items map[string]*model.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{items: map[string]*model.Document{}}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *model.Document) (string, error) {
	doc.ID = nextID()
	cp := *doc
	r.items[doc.ID] = &cp
	return doc.ID, nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	doc, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocumentRepo) ListByUser(_ context.Context, userID string, status model.DocumentStatus) ([]*model.Document, error) {
	out := []*model.Document{}
	for _, doc := range r.sorted() {
		if doc.UserID == userID && (status == "" || doc.Status == status) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) ListByStatus(_ context.Context, status model.DocumentStatus) ([]*model.Document, error) {
	out := []*model.Document{}
	for _, doc := range r.sorted() {
		if doc.Status == status {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) sorted() []*model.Document {
	out := make([]*model.Document, 0, len(r.items))
	for _, doc := range r.items {
		cp := *doc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeDocumentRepo) SetReview(_ context.Context, id string, status model.DocumentStatus, review model.DocumentReview) error {
	doc, ok := r.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	doc.Status = status
	doc.Review = review
	return nil
}

type fakeUserRepo struct {
	items map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (string, error) {
	u.ID = nextID()
	cp := *u
	r.items[u.ID] = &cp
	return u.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByCPF(_ context.Context, cpf string) (*model.User, error) {
	for _, u := range r.items {
		if u.CPF == cpf {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindConflict(_ context.Context, cpf, email, enrollment string) (*model.User, error) {
	for _, u := range r.items {
		if u.CPF == cpf || u.Email == email || u.EnrollmentNumber == enrollment {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateContact(_ context.Context, id, email, phone string, address model.Address) error {
	u, ok := r.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Email, u.Phone, u.Address = email, phone, address
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, temporary bool) error {
	u, ok := r.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.PasswordHash, u.TemporaryPassword = hash, temporary
	return nil
}

type fakeFileStore struct {
	files map[string][]byte
	names map[string]string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}, names: map[string]string{}}
}

func (s *fakeFileStore) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := nextID()
	s.files[id] = data
	s.names[id] = name
	return id, nil
}

func (s *fakeFileStore) Open(_ context.Context, id string) (io.ReadCloser, *repository.FileInfo, error) {
	data, ok := s.files[id]
	if !ok {
		return nil, nil, nil
	}
	return io.NopCloser(bytes.NewReader(data)), &repository.FileInfo{ID: id, Name: s.names[id], Length: int64(len(data))}, nil
}

func (s *fakeFileStore) Delete(_ context.Context, id string) error {
	delete(s.files, id)
	return nil
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToStaff(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Type: msgType, Payload: payload})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

type testCaches struct {
	redis     *miniredis.Miniredis
	maxScores cache.MaxScoreCache
	ranking   cache.RankingCache
}

func newTestCaches(t *testing.T) testCaches {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return testCaches{
		redis:     mr,
		maxScores: cache.NewMaxScoreCache(client, time.Hour),
		ranking:   cache.NewRankingCache(client),
	}
}

// env wires every service against fakes and a miniredis-backed cache
type env struct {
	announcements *fakeAnnouncementRepo
	applications  *fakeApplicationRepo
	documents     *fakeDocumentRepo
	users         *fakeUserRepo
	files         *fakeFileStore
	caches        testCaches
	events        *recordingBroadcaster

	announcementSvc *AnnouncementService
	applicationSvc  *ApplicationService
	reviewSvc       *ReviewService
	documentSvc     *DocumentService
	userSvc         *UserService
	authSvc         *AuthService
}

func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()
	e := &env{
		announcements: newFakeAnnouncementRepo(),
		applications:  newFakeApplicationRepo(),
		documents:     newFakeDocumentRepo(),
		users:         newFakeUserRepo(),
		files:         newFakeFileStore(),
		caches:        newTestCaches(t),
		events:        &recordingBroadcaster{},
	}
	clock := func() time.Time { return now }

	e.announcementSvc = NewAnnouncementService(e.announcements, e.applications, e.caches.maxScores, e.caches.ranking)
	e.announcementSvc.now = clock
	e.announcementSvc.SetBroadcaster(e.events)

	e.applicationSvc = NewApplicationService(e.applications, e.announcements, e.documents, e.caches.ranking)
	e.applicationSvc.now = clock
	e.applicationSvc.SetBroadcaster(e.events)

	e.reviewSvc = NewReviewService(e.applications, e.announcements, e.users, e.announcementSvc, e.caches.ranking)
	e.reviewSvc.SetBroadcaster(e.events)

	e.documentSvc = NewDocumentService(e.documents, e.files, e.users, 1<<20)
	e.documentSvc.now = clock
	e.documentSvc.SetBroadcaster(e.events)

	e.userSvc = NewUserService(e.users)
	e.authSvc = NewAuthService(e.users, "test-secret", time.Hour)
	return e
}

// sampleAnnouncement has Q1 single choice [0.4, 0.6], Q2 yes/no 0.7/0.2 and
// a free-text Q3; formula Q1 + Q2 + Q3.
func sampleAnnouncement(now time.Time) *model.Announcement {
	return &model.Announcement{
		Name:            "Auxílio Moradia 2026.1",
		AcademicPeriod:  "2026.1",
		EnrollmentStart: now.Add(-24 * time.Hour),
		EnrollmentEnd:   now.Add(24 * time.Hour),
		RequiredDocuments: []model.RequiredDocument{
			{Type: "Comprovante de Residência", Mandatory: true},
			{Type: "RG", Mandatory: false},
		},
		Questions: []model.QuestionDefinition{
			{Identifier: "Q1", Text: "Renda familiar", Subtype: model.SubtypeSingleChoice, Required: true,
				ChoiceOptions: []model.ChoiceOption{{ID: "low", Label: "Até 1 SM", Weight: 0.6}, {ID: "high", Label: "Acima", Weight: 0.4}}},
			{Identifier: "Q2", Text: "Mora com a família?", Subtype: model.SubtypeYesNo, YesWeight: 0.2, NoWeight: 0.7},
			{Identifier: "Q3", Text: "Justificativa", Subtype: model.SubtypeLongText},
		},
		Formula: "Q1 + Q2 + Q3",
	}
}

func student(id string) model.Actor { return model.Actor{UserID: id, Role: model.RoleStudent} }

func staff(id string) model.Actor { return model.Actor{UserID: id, Role: model.RoleStaff} }
