package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cuongbtq/jobsnearby/internal/api/auth"
	"github.com/cuongbtq/jobsnearby/internal/api/handler"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/cuongbtq/jobsnearby/internal/api/session"
	"github.com/cuongbtq/jobsnearby/internal/cache"
	"github.com/cuongbtq/jobsnearby/internal/events"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	cookieName     = "jobsnearby_session"
	strongPassword = "correct-Horse7battery!staple"
)

type testServer struct {
	router    *gin.Engine
	store     *memStore
	publisher *recordingPublisher
	redis     *miniredis.Miniredis
	deps      *handler.Dependencies
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := newMemStore()
	publisher := &recordingPublisher{}

	deps := &handler.Dependencies{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Accounts:      store,
		Jobs:          store,
		Applications:  store,
		Notifications: store,
		Sessions:      session.NewStore(rdb, time.Hour),
		SearchCache:   cache.NewSearchCache(rdb, "jobsearch", time.Hour),
		Publisher:     publisher,
		Passwords:     auth.NewPasswordHasher(bcrypt.MinCost, 3),
		Cookie: handler.CookieConfig{
			Name:     cookieName,
			SameSite: http.SameSiteLaxMode,
		},
		ServiceName:  "jobsnearby-api",
		AllowOrigins: []string{"http://localhost:5173"},
		HealthChecks: map[string]func(ctx context.Context) error{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}

	return &testServer{
		router:    SetupRouter(deps),
		store:     store,
		publisher: publisher,
		redis:     mr,
		deps:      deps,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("response carries no session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) registerSeeker(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/user/register", map[string]interface{}{
		"jobSeekerFirstName": "Ada",
		"jobSeekerLastName":  "Lovelace",
		"jobSeekerEmail":     email,
		"jobSeekerPassword":  strongPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func (s *testServer) registerEmployer(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/employer/register", map[string]interface{}{
		"employerFirstName":   "Grace",
		"employerLastName":    "Hopper",
		"employerEmail":       email,
		"employerPassword":    strongPassword,
		"employerCompanyName": "Initech",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func (s *testServer) postJob(t *testing.T, cookie *http.Cookie, reqID, title string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/employer/postjob", map[string]interface{}{
		"reqId":    reqID,
		"jobTitle": title,
		"jobCity":  "Austin",
		"jobState": "TX",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode(t, w)["job"].(map[string]interface{})
	return job["_id"].(string)
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "jobsnearby-api", body["service"])

	s.deps.HealthChecks["postgres"] = func(context.Context) error { return errors.New("down") }
	w = s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/user/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestJobSeekerSessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/current_user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["error"])

	cookie := s.registerSeeker(t, "Ada@Example.com")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	w = s.do(t, http.MethodGet, "/api/current_user", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "jobSeeker", body["currentUserType"])

	w = s.do(t, http.MethodGet, "/user/profile", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "ada@example.com", profile["jobSeekerEmail"])
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodPost, "/user/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully Logout", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, "/api/current_user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionExpiry(t *testing.T) {
	s := newTestServer(t)
	cookie := s.registerSeeker(t, "ada@example.com")

	s.redis.FastForward(2 * time.Hour)

	w := s.do(t, http.MethodGet, "/user/profile", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionWithUnknownUserType(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.redis.Set("session:forged",
		`{"user_id":"u-1","user_type":"admin","created_at":"2026-01-01T00:00:00Z"}`))

	w := s.do(t, http.MethodGet, "/api/current_user", nil, &http.Cookie{Name: cookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, s.redis.Exists("session:forged"))

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	s.registerSeeker(t, "ada@example.com")

	tests := []struct {
		name      string
		body      map[string]interface{}
		errString string
	}{
		{
			name: "duplicate email",
			body: map[string]interface{}{
				"jobSeekerFirstName": "Ada", "jobSeekerLastName": "L",
				"jobSeekerEmail": "ADA@example.com", "jobSeekerPassword": strongPassword,
			},
			errString: "Email already in use",
		},
		{
			name: "invalid email",
			body: map[string]interface{}{
				"jobSeekerFirstName": "Ada", "jobSeekerLastName": "L",
				"jobSeekerEmail": "not-an-email", "jobSeekerPassword": strongPassword,
			},
			errString: "jobSeekerEmail",
		},
		{
			name: "weak password",
			body: map[string]interface{}{
				"jobSeekerFirstName": "Bob", "jobSeekerLastName": "B",
				"jobSeekerEmail": "bob@example.com", "jobSeekerPassword": "Password1!",
			},
			errString: "password is too weak",
		},
		{
			name: "password without special character",
			body: map[string]interface{}{
				"jobSeekerFirstName": "Bob", "jobSeekerLastName": "B",
				"jobSeekerEmail": "bob@example.com", "jobSeekerPassword": "correctHorse7batterystaple",
			},
			errString: "special character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/user/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], tt.errString)
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.registerSeeker(t, "ada@example.com")
	s.registerEmployer(t, "grace@example.com")

	w := s.do(t, http.MethodGet, "/user/login", nil, nil)
	assert.Equal(t, "This is the login page", decode(t, w)["message"])

	tests := []struct {
		name    string
		path    string
		body    map[string]interface{}
		code    int
		message string
	}{
		{
			name:    "job seeker generic fields",
			path:    "/user/login",
			body:    map[string]interface{}{"email": "ADA@example.com", "password": strongPassword},
			code:    http.StatusOK,
			message: "Job Seeker Login Successful",
		},
		{
			name:    "job seeker prefixed fields",
			path:    "/user/login",
			body:    map[string]interface{}{"jobSeekerEmail": "ada@example.com", "jobSeekerPassword": strongPassword},
			code:    http.StatusOK,
			message: "Job Seeker Login Successful",
		},
		{
			name:    "employer",
			path:    "/employer/login",
			body:    map[string]interface{}{"employerEmail": "grace@example.com", "employerPassword": strongPassword},
			code:    http.StatusOK,
			message: "Employer Login Successful",
		},
		{
			name: "wrong password",
			path: "/user/login",
			body: map[string]interface{}{"email": "ada@example.com", "password": "nope"},
			code: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			path: "/user/login",
			body: map[string]interface{}{"email": "nobody@example.com", "password": strongPassword},
			code: http.StatusUnauthorized,
		},
		{
			name: "employer credentials on seeker login",
			path: "/user/login",
			body: map[string]interface{}{"email": "grace@example.com", "password": strongPassword},
			code: http.StatusUnauthorized,
		},
		{
			name: "missing fields",
			path: "/user/login",
			body: map[string]interface{}{"email": "ada@example.com"},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, tt.body, nil)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.message, decode(t, w)["message"])
				sessionCookie(t, w)
			}
			if tt.code == http.StatusUnauthorized {
				assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
			}
		})
	}
}

func TestLoginReplacesPresentedSession(t *testing.T) {
	s := newTestServer(t)
	first := s.registerSeeker(t, "ada@example.com")

	w := s.do(t, http.MethodPost, "/user/login", map[string]interface{}{
		"email": "ada@example.com", "password": strongPassword,
	}, first)
	require.Equal(t, http.StatusOK, w.Code)
	second := sessionCookie(t, w)
	assert.NotEqual(t, first.Value, second.Value)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/user/profile", nil, first).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/user/profile", nil, second).Code)
}

func TestRoleEnforcement(t *testing.T) {
	s := newTestServer(t)
	seeker := s.registerSeeker(t, "ada@example.com")
	employer := s.registerEmployer(t, "grace@example.com")

	w := s.do(t, http.MethodPost, "/employer/postjob", map[string]interface{}{"reqId": "R1", "jobTitle": "x"}, seeker)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Only employers")

	w = s.do(t, http.MethodGet, "/user/searchjobs", nil, employer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Only job seekers")
}

func TestProfileUpdate(t *testing.T) {
	s := newTestServer(t)
	s.registerSeeker(t, "taken@example.com")
	cookie := s.registerSeeker(t, "ada@example.com")

	w := s.do(t, http.MethodPut, "/user/profile", map[string]interface{}{
		"jobSeekerLocation":  "Austin, TX",
		"jobSeekerEducation": []map[string]interface{}{{"school": "UT Austin"}},
		"jobSeekerPassword":  "ignored-Password1!",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "Austin, TX", user["jobSeekerLocation"])

	// password in the profile body must not change the login password
	w = s.do(t, http.MethodPost, "/user/login", map[string]interface{}{
		"email": "ada@example.com", "password": strongPassword,
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/user/profile", map[string]interface{}{"jobSeekerEmail": "Taken@example.com"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already in use", decode(t, w)["error"])

	w = s.do(t, http.MethodPut, "/user/profile", map[string]interface{}{"jobSeekerEmail": "broken"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServer(t)
	cookie := s.registerEmployer(t, "grace@example.com")
	newPassword := "another-Staple9horse?battery"

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{name: "missing fields", body: map[string]interface{}{"old_password": strongPassword}, code: http.StatusBadRequest},
		{name: "wrong old password", body: map[string]interface{}{"old_password": "nope", "new_password": newPassword}, code: http.StatusUnauthorized},
		{name: "weak new password", body: map[string]interface{}{"old_password": strongPassword, "new_password": "short"}, code: http.StatusBadRequest},
		{name: "success", body: map[string]interface{}{"old_password": strongPassword, "new_password": newPassword}, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPut, "/employer/updatepassword", tt.body, cookie)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodPost, "/employer/login", map[string]interface{}{
		"email": "grace@example.com", "password": newPassword,
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmployerJobCRUD(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	other := s.registerEmployer(t, "other@example.com")

	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")
	assert.Equal(t, []string{events.TypeJobCreated}, s.publisher.types())

	job := s.store.jobs[jobID]
	assert.Equal(t, "Initech", job.CompanyName)

	w := s.do(t, http.MethodPost, "/employer/postjob", map[string]interface{}{"reqId": "R-1", "jobTitle": "Again"}, employer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This Job ID already exists", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/employer/postjob", map[string]interface{}{"reqId": "R-2"}, employer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "jobTitle")

	// same reqId is fine for another employer
	s.postJob(t, other, "R-1", "Frontend Engineer")

	w = s.do(t, http.MethodGet, "/employer/viewjobs", nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["jobs"], 1)

	w = s.do(t, http.MethodGet, "/employer/job/"+jobID, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/employer/updatejob/"+jobID, map[string]interface{}{"jobSalary": "120k"}, employer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["job"].(map[string]interface{})
	assert.Equal(t, "120k", updated["jobSalary"])
	assert.Equal(t, "Backend Engineer", updated["jobTitle"])
	assert.Equal(t, events.TypeJobUpdated, s.publisher.last().Type)

	w = s.do(t, http.MethodPatch, "/employer/updatejob/"+jobID, map[string]interface{}{"jobSalary": "1"}, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/employer/viewjobs/"+jobID, nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, jobID, body["_id"])
	assert.Empty(t, body["applicants"])

	w = s.do(t, http.MethodDelete, "/employer/deletejob/"+jobID, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/employer/deletejob/"+jobID, nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, events.TypeJobDeleted, s.publisher.last().Type)

	w = s.do(t, http.MethodGet, "/employer/job/"+jobID, nil, employer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchJobsUsesCache(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	seeker := s.registerSeeker(t, "ada@example.com")

	s.postJob(t, employer, "R-1", "Go Developer")
	s.postJob(t, employer, "R-2", "Java Developer")

	w := s.do(t, http.MethodGet, "/user/searchjobs?keyword=go&location=austin", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	body := decode(t, w)
	assert.Len(t, body["search_job_data"], 1)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])

	w = s.do(t, http.MethodGet, "/user/searchjobs?keyword=GO&location=Austin", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Len(t, decode(t, w)["search_job_data"], 1)
	assert.Equal(t, 1, s.store.searchCalls)

	assert.True(t, s.redis.Exists("jobsearch:v0:go:austin:1:10"))

	// once the worker invalidates, the same search goes back to the database
	_, err := s.deps.SearchCache.(*cache.SearchCache).Invalidate(context.Background())
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, "/user/searchjobs?keyword=go&location=austin", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, s.store.searchCalls)
	assert.True(t, s.redis.Exists("jobsearch:v1:go:austin:1:10"))

	w = s.do(t, http.MethodGet, "/user/searchjobs?page=184467440737095518&limit=50", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(10000), body["page"])
	assert.Empty(t, body["search_job_data"])

	w = s.do(t, http.MethodGet, "/user/searchjobs?limit=500&page=0", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(50), body["limit"])
	assert.Len(t, body["search_job_data"], 2)

	w = s.do(t, http.MethodGet, "/user/searchjobs?page=abc", nil, seeker)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchJobsCacheUnavailable(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	seeker := s.registerSeeker(t, "ada@example.com")
	s.postJob(t, employer, "R-1", "Go Developer")

	s.deps.SearchCache = failingCache{}
	s.router = SetupRouter(s.deps)

	w := s.do(t, http.MethodGet, "/user/searchjobs?keyword=go", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["search_job_data"], 1)
}

type failingCache struct{}

func (failingCache) Generation(context.Context) (int64, error) {
	return 0, errors.New("redis down")
}

func (failingCache) Get(context.Context, cache.SearchKey, interface{}) (bool, error) {
	return false, errors.New("redis down")
}

func (failingCache) Set(context.Context, cache.SearchKey, interface{}) error {
	return errors.New("redis down")
}

func TestApplicationFlow(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	other := s.registerEmployer(t, "other@example.com")
	seeker := s.registerSeeker(t, "ada@example.com")

	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")

	w := s.do(t, http.MethodGet, "/user/job/"+jobID, nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend Engineer", decode(t, w)["jobTitle"])

	w = s.do(t, http.MethodPost, "/user/applyjobs/missing", nil, seeker)
	assert.Equal(t, http.StatusNotFound, w.Code)

	seekerID := ""
	for id := range s.store.seekers {
		seekerID = id
	}

	// profile is hidden until the seeker applies
	w = s.do(t, http.MethodGet, "/employer/user_profile/"+seekerID, nil, employer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/user/applyjobs/"+jobID, nil, seeker)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode(t, w)["application"].(map[string]interface{})
	applicationID := app["application_id"].(string)
	assert.Equal(t, "applied", app["status"])

	submitted := s.publisher.last()
	require.Equal(t, events.TypeApplicationSubmitted, submitted.Type)
	var payload events.ApplicationPayload
	require.NoError(t, json.Unmarshal(submitted.Payload, &payload))
	assert.Equal(t, "Ada Lovelace", payload.SeekerName)
	assert.Equal(t, jobID, payload.JobID)

	w = s.do(t, http.MethodPost, "/user/applyjobs/"+jobID, nil, seeker)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/user/appliedjobs", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	applied := decode(t, w)["jobs_applied"].([]interface{})
	require.Len(t, applied, 1)
	assert.Equal(t, applicationID, applied[0].(map[string]interface{})["application_id"])

	w = s.do(t, http.MethodGet, "/api/dashboard/", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["applied_jobs"], 1)

	w = s.do(t, http.MethodGet, "/employer/job/"+jobID+"/applicants", nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	applicants := decode(t, w)["applicants"].([]interface{})
	require.Len(t, applicants, 1)
	assert.Equal(t, seekerID, applicants[0].(map[string]interface{})["user_id"])

	w = s.do(t, http.MethodGet, "/employer/user_profile/"+seekerID, nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", decode(t, w)["jobSeekerEmail"])

	statusPath := "/employer/applicant/" + applicationID + "/status"

	w = s.do(t, http.MethodPut, statusPath, map[string]interface{}{"status": "hired"}, employer)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, statusPath, map[string]interface{}{"status": "accepted"}, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, statusPath, map[string]interface{}{"status": "accepted"}, employer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, events.TypeApplicationStatusChanged, s.publisher.last().Type)

	w = s.do(t, http.MethodDelete, "/user/applications/"+applicationID, nil, seeker)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Application can no longer be withdrawn", decode(t, w)["error"])
}

func TestWithdrawApplication(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	seeker := s.registerSeeker(t, "ada@example.com")
	intruder := s.registerSeeker(t, "eve@example.com")

	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")

	w := s.do(t, http.MethodPost, "/user/applyjobs/"+jobID, nil, seeker)
	require.Equal(t, http.StatusCreated, w.Code)
	applicationID := decode(t, w)["application"].(map[string]interface{})["application_id"].(string)

	w = s.do(t, http.MethodDelete, "/user/applications/"+applicationID, nil, intruder)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/user/applications/"+applicationID, nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)

	withdrawn := s.publisher.last()
	require.Equal(t, events.TypeApplicationWithdrawn, withdrawn.Type)
	var payload events.ApplicationPayload
	require.NoError(t, json.Unmarshal(withdrawn.Payload, &payload))
	assert.NotEmpty(t, payload.EmployerID)
	assert.Equal(t, "Backend Engineer", payload.JobTitle)

	assert.Empty(t, s.store.applications)
}

func TestDeleteJobReportsApplicants(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	seekerA := s.registerSeeker(t, "ada@example.com")
	seekerB := s.registerSeeker(t, "bob@example.com")

	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/user/applyjobs/"+jobID, nil, seekerA).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/user/applyjobs/"+jobID, nil, seekerB).Code)

	w := s.do(t, http.MethodDelete, "/employer/deletejob/"+jobID, nil, employer)
	require.Equal(t, http.StatusOK, w.Code)

	deleted := s.publisher.last()
	require.Equal(t, events.TypeJobDeleted, deleted.Type)
	var payload events.JobPayload
	require.NoError(t, json.Unmarshal(deleted.Payload, &payload))
	assert.Len(t, payload.ApplicantIDs, 2)
	assert.Empty(t, s.store.applications)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	s.publisher.fail = true

	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")
	assert.Contains(t, s.store.jobs, jobID)
}

func TestSavedJobs(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	seeker := s.registerSeeker(t, "ada@example.com")
	jobID := s.postJob(t, employer, "R-1", "Backend Engineer")

	w := s.do(t, http.MethodPost, "/user/saved-jobs/missing", nil, seeker)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/user/saved-jobs/"+jobID, nil, seeker).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/user/saved-jobs/"+jobID, nil, seeker).Code)

	w = s.do(t, http.MethodGet, "/user/saved-jobs", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	var saved []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, jobID, saved[0]["_id"])

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/user/saved-jobs/"+jobID, nil, seeker).Code)

	w = s.do(t, http.MethodGet, "/user/saved-jobs", nil, seeker)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Empty(t, saved)
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	seeker := s.registerSeeker(t, "ada@example.com")

	var seekerID string
	for id := range s.store.seekers {
		seekerID = id
	}
	s.store.notifications["n-1"] = &model.Notification{
		NotificationID: "n-1",
		RecipientID:    seekerID,
		Kind:           events.TypeApplicationStatusChanged,
		Message:        "Your application for Backend Engineer is now accepted",
		CreatedAt:      time.Now(),
	}
	s.store.notifications["n-2"] = &model.Notification{NotificationID: "n-2", RecipientID: "someone-else"}

	w := s.do(t, http.MethodGet, "/user/notifications", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["notifications"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0].(map[string]interface{})["isRead"])

	w = s.do(t, http.MethodPost, "/user/notifications/n-1/read", nil, seeker)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.store.notifications["n-1"].IsRead)

	w = s.do(t, http.MethodPost, "/user/notifications/n-2/read", nil, seeker)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicLatestJobsAndEmployerDashboard(t *testing.T) {
	s := newTestServer(t)
	employer := s.registerEmployer(t, "grace@example.com")
	for i := 0; i < 12; i++ {
		s.postJob(t, employer, "R-"+string(rune('a'+i)), "Job")
	}

	w := s.do(t, http.MethodGet, "/api/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["jobs"], 10)

	w = s.do(t, http.MethodGet, "/api/dashboard/", nil, employer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posted_jobs"], 12)
}
