package application

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medli/medli-api/internal/domain/entity"
	repo "github.com/medli/medli-api/internal/domain/repository"
	"github.com/medli/medli-api/pkg/helpers"
	"github.com/medli/medli-api/pkg/mailer"
)

func TestMain(m *testing.M) {
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]entity.User
	seq    int
	now    time.Time
	getErr error

	// records, when set, loses the user's health record on DeleteCascade.
	records *memRecords
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]entity.User{}, now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	r.seq++
	u.ID = "00000000-0000-4000-8000-" + leftPad(r.seq)
	u.CreatedAt, u.UpdatedAt = r.now, r.now
	r.byID[u.ID] = *u
	return nil
}

func leftPad(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 12 {
		s = "0" + s
	}
	return s
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUsers) EmailTakenByOther(_ context.Context, email, exceptID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.byID {
		if u.Email == email && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name, cur.Email = u.Name, u.Email
	cur.UpdatedAt = r.now.Add(time.Hour)
	u.UpdatedAt = cur.UpdatedAt
	r.byID[u.ID] = cur
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Password = hash
	r.byID[id] = cur
	return nil
}

func (r *memUsers) DeleteCascade(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	if r.records != nil {
		r.records.mu.Lock()
		delete(r.records.byUser, id)
		r.records.mu.Unlock()
	}
	return nil
}

// memRecords stores records JSON-encoded so callers never share slices with it.
type memRecords struct {
	mu      sync.Mutex
	byUser  map[string][]byte
	now     time.Time
	failErr error
}

func newMemRecords() *memRecords {
	return &memRecords{byUser: map[string][]byte{}, now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (r *memRecords) get(userID string) *entity.HealthRecord {
	b, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	var h entity.HealthRecord
	_ = json.Unmarshal(b, &h)
	return &h
}

func (r *memRecords) put(h *entity.HealthRecord) {
	h.UpdatedAt = r.now
	b, _ := json.Marshal(h)
	r.byUser[h.UserID] = b
}

func (r *memRecords) upsert(userID string, fn func(h *entity.HealthRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	h := r.get(userID)
	if h == nil {
		h = &entity.HealthRecord{UserID: userID, CoughHistory: []entity.Recording{}, CreatedAt: r.now}
	}
	fn(h)
	r.put(h)
	return nil
}

func (r *memRecords) Get(_ context.Context, userID string) (*entity.HealthRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	return r.get(userID), nil
}

func (r *memRecords) PrependRecording(_ context.Context, userID string, rec entity.Recording) error {
	return r.upsert(userID, func(h *entity.HealthRecord) {
		h.CoughHistory = append([]entity.Recording{rec}, h.CoughHistory...)
	})
}

func (r *memRecords) RemoveRecording(_ context.Context, userID, recordingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.get(userID)
	if h == nil {
		return repo.ErrHealthRecordNotFound
	}
	if !h.HasRecording(recordingID) {
		return repo.ErrRecordingNotFound
	}
	h.CoughHistory = h.WithoutRecording(recordingID)
	r.put(h)
	return nil
}

func (r *memRecords) ReplaceRiskAssessment(_ context.Context, userID string, risk entity.RiskAssessment) error {
	return r.upsert(userID, func(h *entity.HealthRecord) { h.RiskTestData = &risk })
}

func (r *memRecords) ReplaceHabits(_ context.Context, userID string, habits entity.Habits) error {
	return r.upsert(userID, func(h *entity.HealthRecord) { h.HabitsData = &habits })
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fakeIndex struct {
	indexed      []string
	deleted      []string
	deletedUsers []string
	searchIDs    []string
	err          error
}

func (f *fakeIndex) Index(_ context.Context, _ string, rec entity.Recording) error {
	f.indexed = append(f.indexed, rec.ID)
	return f.err
}

func (f *fakeIndex) Delete(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) DeleteUser(_ context.Context, userID string) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	return f.err
}

func (f *fakeIndex) Search(context.Context, string, string, int) ([]string, error) {
	return f.searchIDs, f.err
}

type fakeArchiver struct {
	paths []string
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, userID string, at time.Time, _ any) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	p := "https://storage.example/exports/" + userID + "/" + at.Format("20060102T150405Z") + ".json"
	a.paths = append(a.paths, p)
	return p, nil
}
