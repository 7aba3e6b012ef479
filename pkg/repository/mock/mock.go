// Package mock provides in-memory repository implementations for handler
// tests. They honor the same contracts as the sqlite implementations:
// lookups return (nil, nil) on a miss, duplicates surface ErrDuplicate and
// profile updates reject illegal status transitions.
package mock

import (
	"context"
	"sync"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

type Mocks struct {
	Users        *UserRepo
	Profiles     *ProfileRepo
	Jobs         *JobRepo
	Questions    *QuestionRepo
	Applications *ApplicationRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:        &UserRepo{},
		Profiles:     &ProfileRepo{},
		Jobs:         &JobRepo{},
		Questions:    &QuestionRepo{},
		Applications: &ApplicationRepo{},
	}
}

var _ repository.UserRepo = (*UserRepo)(nil)
var _ repository.ProfileRepo = (*ProfileRepo)(nil)
var _ repository.JobRepo = (*JobRepo)(nil)
var _ repository.QuestionRepo = (*QuestionRepo)(nil)
var _ repository.ApplicationRepo = (*ApplicationRepo)(nil)

type UserRepo struct {
	mu        sync.Mutex
	Stored    []*models.User
	CreateErr error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.Email == u.Email || (u.Phone != "" && s.Phone == u.Phone) {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	m.Stored = append(m.Stored, &cp)
	return nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) GetUserByLogin(ctx context.Context, identifier string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.Role != role {
			continue
		}
		if s.Email == identifier || (s.Phone != "" && s.Phone == identifier) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Stored {
		if s.ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return nil
}

type ProfileRepo struct {
	mu        sync.Mutex
	Stored    map[string]*models.Profile
	CreateErr error
	UpdateErr error
}

func (m *ProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil {
		m.Stored = make(map[string]*models.Profile)
	}
	if _, ok := m.Stored[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	cp := *p
	m.Stored[p.UserID] = &cp
	return nil
}

func (m *ProfileRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Stored[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *ProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Stored[p.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	if !lifecycle.CanTransition(cur.Status, p.Status) {
		return lifecycle.ErrIllegalTransition
	}
	cp := *p
	m.Stored[p.UserID] = &cp
	return nil
}

func (m *ProfileRepo) ListProfiles(ctx context.Context, status models.Status, kind models.ProfileKind) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Profile
	for _, p := range m.Stored {
		if status != "" && p.Status != status {
			continue
		}
		if kind != "" && p.Kind != kind {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Seed inserts a profile bypassing transition checks.
func (m *ProfileRepo) Seed(p *models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil {
		m.Stored = make(map[string]*models.Profile)
	}
	cp := *p
	m.Stored[p.UserID] = &cp
}

type JobRepo struct {
	mu     sync.Mutex
	Stored map[string]*models.Job
}

func (m *JobRepo) SaveJob(ctx context.Context, j *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil {
		m.Stored = make(map[string]*models.Job)
	}
	cp := *j
	m.Stored[j.ID] = &cp
	return nil
}

func (m *JobRepo) GetJob(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.Stored[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (m *JobRepo) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.Stored {
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (m *JobRepo) DeleteJob(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Stored, id)
	return nil
}

type QuestionRepo struct {
	mu     sync.Mutex
	Stored []*models.QuizQuestion
}

func (m *QuestionRepo) CreateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.ID == q.ID {
			return repository.ErrDuplicate
		}
	}
	cp := *q
	m.Stored = append(m.Stored, &cp)
	return nil
}

func (m *QuestionRepo) UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Stored {
		if s.ID == q.ID {
			cp := *q
			m.Stored[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *QuestionRepo) DeleteQuestion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Stored {
		if s.ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *QuestionRepo) GetQuestion(ctx context.Context, id string) (*models.QuizQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *QuestionRepo) ListQuestions(ctx context.Context, kind models.ProfileKind) ([]models.QuizQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QuizQuestion
	for _, s := range m.Stored {
		if kind != "" && s.Kind != kind {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

type ApplicationRepo struct {
	mu     sync.Mutex
	Stored []*models.Application
}

func (m *ApplicationRepo) CreateApplication(ctx context.Context, a *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stored {
		if s.JobID == a.JobID && s.CandidateID == a.CandidateID {
			return repository.ErrDuplicate
		}
	}
	cp := *a
	m.Stored = append(m.Stored, &cp)
	return nil
}

func (m *ApplicationRepo) ListApplications(ctx context.Context) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Application, 0, len(m.Stored))
	for _, s := range m.Stored {
		out = append(out, *s)
	}
	return out, nil
}

func (m *ApplicationRepo) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, s := range m.Stored {
		if s.CandidateID == candidateID {
			out = append(out, *s)
		}
	}
	return out, nil
}
