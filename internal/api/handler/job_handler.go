package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/dto"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/cuongbtq/jobsnearby/internal/api/storage"
	"github.com/cuongbtq/jobsnearby/internal/cache"
	"github.com/cuongbtq/jobsnearby/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostJob handles POST /employer/postjob
func (h *JobHandler) PostJob(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("PostJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("employer_id", sess.UserID),
	)

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	job := req.ToModel(uuid.New().String(), sess.UserID, time.Now().UTC())

	// company details default to the employer's profile
	if job.CompanyName == "" || job.CompanyDescription == "" || job.CompanyIndustry == "" {
		employer, err := h.accounts.GetEmployerByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				notFound(c, "User not found")
				return
			}
			internalError(c, h.logger, "Failed to get employer", err)
			return
		}
		fillCompany(job, employer)
	}

	if err := h.jobs.CreateJob(ctx, job); err != nil {
		if errors.Is(err, domain.ErrDuplicateReqID) {
			badRequest(c, "This Job ID already exists")
			return
		}
		internalError(c, h.logger, "Failed to create job", err)
		return
	}

	publishEvent(ctx, h.logger, h.publisher, events.TypeJobCreated, events.JobPayload{
		JobID:      job.JobID,
		EmployerID: job.EmployerID,
		JobTitle:   job.JobTitle,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Job posted successfully",
		"job":     dto.NewJobDTO(job),
	})
}

func fillCompany(job *model.Job, employer *model.Employer) {
	if job.CompanyName == "" {
		job.CompanyName = employer.CompanyName
	}
	if job.CompanyDescription == "" {
		job.CompanyDescription = employer.CompanyDescription
	}
	if job.CompanyIndustry == "" {
		job.CompanyIndustry = employer.CompanyIndustry
	}
}

// ListEmployerJobs handles GET /employer/viewjobs
func (h *JobHandler) ListEmployerJobs(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("ListEmployerJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("employer_id", sess.UserID),
	)

	jobs, err := h.jobs.ListJobsByEmployer(c.Request.Context(), sess.UserID)
	if err != nil {
		internalError(c, h.logger, "Failed to list employer jobs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs": dto.NewJobDTOs(jobs),
	})
}

// ownJob loads a job and checks it belongs to the session's employer. Jobs of
// other employers are reported as missing.
func (h *JobHandler) ownJob(c *gin.Context, jobID string) (*model.Job, bool) {
	job, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Job not found")
			return nil, false
		}
		internalError(c, h.logger, "Failed to get job", err)
		return nil, false
	}

	if job.EmployerID != CurrentSession(c).UserID {
		notFound(c, "Job not found")
		return nil, false
	}

	return job, true
}

// GetEmployerJob handles GET /employer/job/:job_id
func (h *JobHandler) GetEmployerJob(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("GetEmployerJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, ok := h.ownJob(c, jobID)
	if !ok {
		return
	}

	applicants, err := h.applications.ListApplicants(c.Request.Context(), job.JobID)
	if err != nil {
		internalError(c, h.logger, "Failed to list applicants", err)
		return
	}

	c.JSON(http.StatusOK, dto.EmployerJobResponse{
		JobDTO:     dto.NewJobDTO(job),
		Applicants: dto.NewApplicantDTOs(applicants),
	})
}

// ListApplicants handles GET /employer/job/:job_id/applicants
func (h *JobHandler) ListApplicants(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("ListApplicants called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, ok := h.ownJob(c, jobID)
	if !ok {
		return
	}

	applicants, err := h.applications.ListApplicants(c.Request.Context(), job.JobID)
	if err != nil {
		internalError(c, h.logger, "Failed to list applicants", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applicants": dto.NewApplicantDTOs(applicants),
	})
}

// UpdateJob handles PATCH|PUT /employer/updatejob/:job_id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("UpdateJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	job, ok := h.ownJob(c, jobID)
	if !ok {
		return
	}

	req.ApplyTo(job)

	ctx := c.Request.Context()
	if err := h.jobs.UpdateJob(ctx, job); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateReqID):
			badRequest(c, "This Job ID already exists")
		case errors.Is(err, domain.ErrNotFound):
			notFound(c, "Job not found")
		default:
			internalError(c, h.logger, "Failed to update job", err)
		}
		return
	}

	publishEvent(ctx, h.logger, h.publisher, events.TypeJobUpdated, events.JobPayload{
		JobID:      job.JobID,
		EmployerID: job.EmployerID,
		JobTitle:   job.JobTitle,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Job updated successfully",
		"job":     dto.NewJobDTO(job),
	})
}

// DeleteJob handles DELETE /employer/deletejob/:job_id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("DeleteJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, ok := h.ownJob(c, jobID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	applicantIDs, err := h.jobs.DeleteJob(ctx, job.JobID, job.EmployerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		internalError(c, h.logger, "Failed to delete job", err)
		return
	}

	publishEvent(ctx, h.logger, h.publisher, events.TypeJobDeleted, events.JobPayload{
		JobID:        job.JobID,
		EmployerID:   job.EmployerID,
		JobTitle:     job.JobTitle,
		ApplicantIDs: applicantIDs,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Job deleted successfully",
	})
}

// GetJob handles GET /user/job/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("GetJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		internalError(c, h.logger, "Failed to get job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// SearchJobs handles GET /user/searchjobs
// Pages are served from the search cache when present
func (h *JobHandler) SearchJobs(c *gin.Context) {
	h.logger.Info("SearchJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
	)

	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.Any("error", err))
		badRequest(c, "Invalid query parameters")
		return
	}

	req.Page, req.Limit = NormalizePage(req.Page, req.Limit)

	ctx := c.Request.Context()

	// the generation is read before the database so a page computed across
	// an invalidation is stored under the old generation
	useCache := true
	generation, err := h.searchCache.Generation(ctx)
	if err != nil {
		h.logger.Warn("Search cache unavailable", slog.Any("error", err))
		useCache = false
	}

	key := cache.SearchKey{
		Generation: generation,
		Keyword:    req.Keyword,
		Location:   req.Location,
		Page:       req.Page,
		Limit:      req.Limit,
	}

	var cached dto.SearchJobsResponse
	hit := false
	if useCache {
		hit, err = h.searchCache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.Warn("Search cache read failed", slog.Any("error", err))
		}
	}
	if hit {
		h.logger.Debug("Search cache hit", slog.String("query", c.Request.URL.RawQuery))
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, cached)
		return
	}

	jobs, err := h.jobs.SearchJobs(ctx, storage.JobFilter{
		Keyword:  req.Keyword,
		Location: req.Location,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		internalError(c, h.logger, "Failed to search jobs", err)
		return
	}

	resp := dto.SearchJobsResponse{
		SearchJobData: dto.NewJobDTOs(jobs),
		Page:          req.Page,
		Limit:         req.Limit,
	}

	if useCache {
		if err := h.searchCache.Set(ctx, key, resp); err != nil {
			h.logger.Warn("Search cache write failed", slog.Any("error", err))
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}

// ListSavedJobs handles GET /user/saved-jobs
func (h *JobHandler) ListSavedJobs(c *gin.Context) {
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	seeker, err := h.accounts.GetJobSeekerByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to get job seeker", err)
		return
	}

	jobs, err := h.jobs.GetJobsByIDs(ctx, seeker.SavedJobs)
	if err != nil {
		internalError(c, h.logger, "Failed to get saved jobs", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTOs(jobs))
}

// SaveJob handles POST /user/saved-jobs/:job_id
func (h *JobHandler) SaveJob(c *gin.Context) {
	sess := CurrentSession(c)
	jobID := c.Param("job_id")
	ctx := c.Request.Context()

	h.logger.Info("SaveJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	if _, err := h.jobs.GetJobByID(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		internalError(c, h.logger, "Failed to get job", err)
		return
	}

	if err := h.accounts.AddSavedJob(ctx, sess.UserID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to save job", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Job saved",
	})
}

// UnsaveJob handles DELETE /user/saved-jobs/:job_id
func (h *JobHandler) UnsaveJob(c *gin.Context) {
	sess := CurrentSession(c)
	jobID := c.Param("job_id")

	h.logger.Info("UnsaveJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	if err := h.accounts.RemoveSavedJob(c.Request.Context(), sess.UserID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to remove saved job", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Job removed from saved jobs",
	})
}
