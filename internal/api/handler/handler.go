package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/auth"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/cuongbtq/jobsnearby/internal/api/session"
	"github.com/cuongbtq/jobsnearby/internal/api/storage"
	"github.com/cuongbtq/jobsnearby/internal/cache"
	"github.com/cuongbtq/jobsnearby/internal/events"
)

type AccountStore interface {
	CreateJobSeeker(ctx context.Context, seeker *model.JobSeeker) error
	GetJobSeekerByID(ctx context.Context, id string) (*model.JobSeeker, error)
	GetJobSeekerByEmail(ctx context.Context, email string) (*model.JobSeeker, error)
	UpdateJobSeekerProfile(ctx context.Context, seeker *model.JobSeeker) error
	UpdateJobSeekerPassword(ctx context.Context, id, passwordHash string) error
	AddSavedJob(ctx context.Context, seekerID, jobID string) error
	RemoveSavedJob(ctx context.Context, seekerID, jobID string) error

	CreateEmployer(ctx context.Context, employer *model.Employer) error
	GetEmployerByID(ctx context.Context, id string) (*model.Employer, error)
	GetEmployerByEmail(ctx context.Context, email string) (*model.Employer, error)
	UpdateEmployerProfile(ctx context.Context, employer *model.Employer) error
	UpdateEmployerPassword(ctx context.Context, id, passwordHash string) error
}

type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, jobID, employerID string) ([]string, error)
	ListJobsByEmployer(ctx context.Context, employerID string) ([]model.Job, error)
	LatestJobs(ctx context.Context, limit int) ([]model.Job, error)
	SearchJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
	GetJobsByIDs(ctx context.Context, ids []string) ([]model.Job, error)
}

type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, applicationID string) (*model.Application, error)
	ListAppliedJobs(ctx context.Context, seekerID string) ([]model.AppliedJob, error)
	ListApplicants(ctx context.Context, jobID string) ([]model.Applicant, error)
	UpdateApplicationStatus(ctx context.Context, applicationID, status string) error
	WithdrawApplication(ctx context.Context, applicationID, seekerID string) error
	HasAppliedToEmployer(ctx context.Context, seekerID, employerID string) (bool, error)
}

type NotificationStore interface {
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, recipientID string) error
}

type SessionStore interface {
	Create(ctx context.Context, userID, userType string) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

type SearchCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, k cache.SearchKey, dst interface{}) (bool, error)
	Set(ctx context.Context, k cache.SearchKey, v interface{}) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Accounts      AccountStore
	Jobs          JobStore
	Applications  ApplicationStore
	Notifications NotificationStore
	Sessions      SessionStore
	SearchCache   SearchCache
	Publisher     EventPublisher
	Passwords     *auth.PasswordHasher
	Cookie        CookieConfig

	ServiceName  string
	AllowOrigins []string
	CORSMaxAge   time.Duration
	HealthChecks map[string]func(ctx context.Context) error
}

// AuthHandler handles registration, login and profile requests for both user types
type AuthHandler struct {
	logger    *slog.Logger
	accounts  AccountStore
	sessions  SessionStore
	passwords *auth.PasswordHasher
	cookie    CookieConfig
}

func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger:    deps.Logger,
		accounts:  deps.Accounts,
		sessions:  deps.Sessions,
		passwords: deps.Passwords,
		cookie:    deps.Cookie,
	}
}

// JobHandler handles job postings, job search and saved jobs
type JobHandler struct {
	logger       *slog.Logger
	accounts     AccountStore
	jobs         JobStore
	applications ApplicationStore
	searchCache  SearchCache
	publisher    EventPublisher
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		accounts:     deps.Accounts,
		jobs:         deps.Jobs,
		applications: deps.Applications,
		searchCache:  deps.SearchCache,
		publisher:    deps.Publisher,
	}
}

// ApplicationHandler handles applying, withdrawing and reviewing applications
type ApplicationHandler struct {
	logger       *slog.Logger
	accounts     AccountStore
	jobs         JobStore
	applications ApplicationStore
	publisher    EventPublisher
}

func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger:       deps.Logger,
		accounts:     deps.Accounts,
		jobs:         deps.Jobs,
		applications: deps.Applications,
		publisher:    deps.Publisher,
	}
}

type NotificationHandler struct {
	logger        *slog.Logger
	notifications NotificationStore
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:        deps.Logger,
		notifications: deps.Notifications,
	}
}

// HomeHandler serves the public landing endpoints and the dashboard
type HomeHandler struct {
	logger       *slog.Logger
	jobs         JobStore
	applications ApplicationStore
}

func NewHomeHandler(deps *Dependencies) *HomeHandler {
	return &HomeHandler{
		logger:       deps.Logger,
		jobs:         deps.Jobs,
		applications: deps.Applications,
	}
}
