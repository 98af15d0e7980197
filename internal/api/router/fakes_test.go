package router

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/cuongbtq/jobsnearby/internal/api/storage"
	"github.com/cuongbtq/jobsnearby/internal/events"
)

// memStore is an in-memory stand-in for the Postgres storage
type memStore struct {
	mu            sync.Mutex
	seekers       map[string]*model.JobSeeker
	employers     map[string]*model.Employer
	jobs          map[string]*model.Job
	applications  map[string]*model.Application
	notifications map[string]*model.Notification
	searchCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		seekers:       map[string]*model.JobSeeker{},
		employers:     map[string]*model.Employer{},
		jobs:          map[string]*model.Job{},
		applications:  map[string]*model.Application{},
		notifications: map[string]*model.Notification{},
	}
}

func (m *memStore) CreateJobSeeker(_ context.Context, s *model.JobSeeker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.seekers {
		if existing.Email == s.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *s
	m.seekers[s.ID] = &cp
	return nil
}

func (m *memStore) GetJobSeekerByID(_ context.Context, id string) (*model.JobSeeker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seekers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.SavedJobs = append([]string{}, s.SavedJobs...)
	return &cp, nil
}

func (m *memStore) GetJobSeekerByEmail(_ context.Context, email string) (*model.JobSeeker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seekers {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) UpdateJobSeekerProfile(_ context.Context, s *model.JobSeeker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.seekers[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range m.seekers {
		if id != s.ID && other.Email == s.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *s
	cp.PasswordHash = existing.PasswordHash
	m.seekers[s.ID] = &cp
	return nil
}

func (m *memStore) UpdateJobSeekerPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seekers[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.PasswordHash = hash
	return nil
}

func (m *memStore) AddSavedJob(_ context.Context, seekerID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seekers[seekerID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, id := range s.SavedJobs {
		if id == jobID {
			return nil
		}
	}
	s.SavedJobs = append(s.SavedJobs, jobID)
	return nil
}

func (m *memStore) RemoveSavedJob(_ context.Context, seekerID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seekers[seekerID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := []string{}
	for _, id := range s.SavedJobs {
		if id != jobID {
			kept = append(kept, id)
		}
	}
	s.SavedJobs = kept
	return nil
}

func (m *memStore) CreateEmployer(_ context.Context, e *model.Employer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.employers {
		if existing.Email == e.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *e
	m.employers[e.ID] = &cp
	return nil
}

func (m *memStore) GetEmployerByID(_ context.Context, id string) (*model.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) GetEmployerByEmail(_ context.Context, email string) (*model.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employers {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) UpdateEmployerProfile(_ context.Context, e *model.Employer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.employers[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range m.employers {
		if id != e.ID && other.Email == e.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *e
	cp.PasswordHash = existing.PasswordHash
	m.employers[e.ID] = &cp
	return nil
}

func (m *memStore) UpdateEmployerPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employers[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.PasswordHash = hash
	return nil
}

func (m *memStore) CreateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.jobs {
		if existing.EmployerID == job.EmployerID && existing.ReqID == job.ReqID {
			return domain.ErrDuplicateReqID
		}
	}
	cp := *job
	m.jobs[job.JobID] = &cp
	return nil
}

func (m *memStore) GetJobByID(_ context.Context, jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memStore) UpdateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.jobs[job.JobID]
	if !ok || existing.EmployerID != job.EmployerID {
		return domain.ErrNotFound
	}
	for id, other := range m.jobs {
		if id != job.JobID && other.EmployerID == job.EmployerID && other.ReqID == job.ReqID {
			return domain.ErrDuplicateReqID
		}
	}
	cp := *job
	cp.UpdatedAt = time.Now().UTC()
	m.jobs[job.JobID] = &cp
	return nil
}

func (m *memStore) DeleteJob(_ context.Context, jobID, employerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.EmployerID != employerID {
		return nil, domain.ErrNotFound
	}
	var applicantIDs []string
	for id, app := range m.applications {
		if app.JobID == jobID {
			applicantIDs = append(applicantIDs, app.JobSeekerID)
			delete(m.applications, id)
		}
	}
	delete(m.jobs, jobID)
	sort.Strings(applicantIDs)
	return applicantIDs, nil
}

func (m *memStore) sortedJobs(filter func(*model.Job) bool) []model.Job {
	out := []model.Job{}
	for _, job := range m.jobs {
		if filter(job) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].JobID > out[j].JobID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) ListJobsByEmployer(_ context.Context, employerID string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedJobs(func(j *model.Job) bool { return j.EmployerID == employerID }), nil
}

func (m *memStore) LatestJobs(_ context.Context, limit int) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := m.sortedJobs(func(*model.Job) bool { return true })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (m *memStore) SearchJobs(_ context.Context, filter storage.JobFilter) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	location := strings.ToLower(strings.TrimSpace(filter.Location))

	jobs := m.sortedJobs(func(j *model.Job) bool {
		if keyword != "" && !strings.Contains(strings.ToLower(j.JobTitle+" "+j.JobDescription), keyword) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(j.JobCity+" "+j.JobState+" "+j.JobZip), location) {
			return false
		}
		return true
	})

	start := (filter.Page - 1) * filter.Limit
	if start >= len(jobs) {
		return []model.Job{}, nil
	}
	end := start + filter.Limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end], nil
}

func (m *memStore) GetJobsByIDs(_ context.Context, ids []string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return m.sortedJobs(func(j *model.Job) bool { return wanted[j.JobID] }), nil
}

func (m *memStore) CreateApplication(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[app.JobID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range m.applications {
		if existing.JobID == app.JobID && existing.JobSeekerID == app.JobSeekerID {
			return domain.ErrAlreadyApplied
		}
	}
	cp := *app
	m.applications[app.ApplicationID] = &cp
	return nil
}

func (m *memStore) GetApplication(_ context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *memStore) ListAppliedJobs(_ context.Context, seekerID string) ([]model.AppliedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AppliedJob{}
	for _, app := range m.applications {
		if app.JobSeekerID != seekerID {
			continue
		}
		job := m.jobs[app.JobID]
		out = append(out, model.AppliedJob{
			Job:           *job,
			ApplicationID: app.ApplicationID,
			Status:        app.Status,
			AppliedOn:     app.AppliedOn,
		})
	}
	return out, nil
}

func (m *memStore) ListApplicants(_ context.Context, jobID string) ([]model.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Applicant{}
	for _, app := range m.applications {
		if app.JobID != jobID {
			continue
		}
		s := m.seekers[app.JobSeekerID]
		out = append(out, model.Applicant{
			ApplicationID: app.ApplicationID,
			JobSeekerID:   s.ID,
			FirstName:     s.FirstName,
			LastName:      s.LastName,
			Email:         s.Email,
			Status:        app.Status,
			AppliedOn:     app.AppliedOn,
		})
	}
	return out, nil
}

func (m *memStore) UpdateApplicationStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Status = status
	return nil
}

func (m *memStore) WithdrawApplication(_ context.Context, id, seekerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[id]
	if !ok || app.JobSeekerID != seekerID || !domain.CanWithdraw(app.Status) {
		return domain.ErrNotFound
	}
	delete(m.applications, id)
	return nil
}

func (m *memStore) HasAppliedToEmployer(_ context.Context, seekerID, employerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.applications {
		if app.JobSeekerID == seekerID && m.jobs[app.JobID].EmployerID == employerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListNotifications(_ context.Context, recipientID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, id, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

// recordingPublisher keeps every published event and can be told to fail
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() *events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}
