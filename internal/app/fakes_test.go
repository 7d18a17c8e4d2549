package app

import (
	"context"
	"io"
	"sync"

	"studynotes/internal/model"
)

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	users  []*model.User
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	m.users = append(m.users, user)
	return nil
}

func (m *memUsers) find(match func(*model.User) bool) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username }), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id }), nil
}

type memRules struct {
	nextID uint
	rules  []model.Rule
}

func (m *memRules) Create(_ context.Context, rule *model.Rule) error {
	m.nextID++
	rule.ID = m.nextID
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *memRules) ListByUsername(_ context.Context, username string) ([]model.Rule, error) {
	var out []model.Rule
	for _, r := range m.rules {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRules) GetByName(_ context.Context, username, name string) (*model.Rule, error) {
	for _, r := range m.rules {
		if r.Username == username && r.Name == name {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memRules) UpdateByName(_ context.Context, username, name, ruleType, description string) (bool, error) {
	for i, r := range m.rules {
		if r.Username == username && r.Name == name {
			m.rules[i].Type = ruleType
			m.rules[i].Description = description
			return true, nil
		}
	}
	return false, nil
}

func (m *memRules) DeleteByIDAndUsername(_ context.Context, id uint, username string) (bool, error) {
	for i, r := range m.rules {
		if r.ID == id && r.Username == username {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memFiles struct {
	files []model.File
}

func (m *memFiles) ListByUsername(_ context.Context, username string) ([]model.File, error) {
	var out []model.File
	for _, f := range m.files {
		if f.Username == username {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFiles) DeleteByIDAndUsername(_ context.Context, id uint, username string) (bool, error) {
	for i, f := range m.files {
		if f.ID == id && f.Username == username {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeUploader struct {
	fileID  string
	err     error
	content string
	name    string
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, fileName string) (string, error) {
	b, _ := io.ReadAll(file)
	f.content = string(b)
	f.name = fileName
	return f.fileID, f.err
}

type fakePublisher struct {
	jobs []model.IngestJob
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, job model.IngestJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type memRuns struct {
	runs map[string]model.RunStatus
}

func (m *memRuns) Get(_ context.Context, runID string) (*model.RunStatus, bool, error) {
	s, ok := m.runs[runID]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (m *memRuns) Set(_ context.Context, status *model.RunStatus) error {
	if m.runs == nil {
		m.runs = make(map[string]model.RunStatus)
	}
	m.runs[status.RunID] = *status
	return nil
}

func (m *memRuns) Delete(_ context.Context, runID string) error {
	delete(m.runs, runID)
	return nil
}
