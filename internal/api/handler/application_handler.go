package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/dto"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/cuongbtq/jobsnearby/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Apply handles POST /user/applyjobs/:job_id
func (h *ApplicationHandler) Apply(c *gin.Context) {
	sess := CurrentSession(c)
	jobID := c.Param("job_id")

	h.logger.Info("Apply called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
		slog.String("user_id", sess.UserID),
	)

	ctx := c.Request.Context()

	job, err := h.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		internalError(c, h.logger, "Failed to get job", err)
		return
	}

	seeker, err := h.accounts.GetJobSeekerByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to get job seeker", err)
		return
	}

	now := time.Now().UTC()
	app := model.Application{
		ApplicationID: uuid.New().String(),
		JobID:         job.JobID,
		JobSeekerID:   seeker.ID,
		Status:        domain.ApplicationStatusApplied,
		AppliedOn:     now,
		UpdatedAt:     now,
	}

	if err := h.applications.CreateApplication(ctx, &app); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyApplied):
			badRequest(c, "You have already applied to this job")
		case errors.Is(err, domain.ErrNotFound):
			notFound(c, "Job not found")
		default:
			internalError(c, h.logger, "Failed to create application", err)
		}
		return
	}

	publishEvent(ctx, h.logger, h.publisher, events.TypeApplicationSubmitted, events.ApplicationPayload{
		ApplicationID: app.ApplicationID,
		JobID:         job.JobID,
		JobTitle:      job.JobTitle,
		EmployerID:    job.EmployerID,
		JobSeekerID:   seeker.ID,
		SeekerName:    fullName(seeker.FirstName, seeker.LastName),
		Status:        app.Status,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": dto.NewApplicationDTO(&app),
	})
}

// ListAppliedJobs handles GET /user/appliedjobs
func (h *ApplicationHandler) ListAppliedJobs(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("ListAppliedJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", sess.UserID),
	)

	applied, err := h.applications.ListAppliedJobs(c.Request.Context(), sess.UserID)
	if err != nil {
		internalError(c, h.logger, "Failed to list applied jobs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs_applied": dto.NewAppliedJobDTOs(applied),
	})
}

// Withdraw handles DELETE /user/applications/:application_id
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	sess := CurrentSession(c)
	applicationID := c.Param("application_id")

	h.logger.Info("Withdraw called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("application_id", applicationID),
	)

	ctx := c.Request.Context()

	app, err := h.applications.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Application not found")
			return
		}
		internalError(c, h.logger, "Failed to get application", err)
		return
	}

	if app.JobSeekerID != sess.UserID {
		notFound(c, "Application not found")
		return
	}

	if !domain.CanWithdraw(app.Status) {
		badRequest(c, "Application can no longer be withdrawn")
		return
	}

	if err := h.applications.WithdrawApplication(ctx, app.ApplicationID, sess.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// decided between the read and the delete
			badRequest(c, "Application can no longer be withdrawn")
			return
		}
		internalError(c, h.logger, "Failed to withdraw application", err)
		return
	}

	payload := events.ApplicationPayload{
		ApplicationID: app.ApplicationID,
		JobID:         app.JobID,
		JobSeekerID:   app.JobSeekerID,
		Status:        app.Status,
	}
	if job, err := h.jobs.GetJobByID(ctx, app.JobID); err == nil {
		payload.JobTitle = job.JobTitle
		payload.EmployerID = job.EmployerID
	} else {
		h.logger.Warn("Failed to load job for withdrawal event", slog.Any("error", err))
	}
	if seeker, err := h.accounts.GetJobSeekerByID(ctx, sess.UserID); err == nil {
		payload.SeekerName = fullName(seeker.FirstName, seeker.LastName)
	}

	publishEvent(ctx, h.logger, h.publisher, events.TypeApplicationWithdrawn, payload)

	c.JSON(http.StatusOK, gin.H{
		"message": "Application withdrawn",
	})
}

// UpdateStatus handles PUT /employer/applicant/:application_id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	sess := CurrentSession(c)
	applicationID := c.Param("application_id")

	h.logger.Info("UpdateStatus called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("application_id", applicationID),
	)

	var req dto.UpdateApplicationStatusRequest
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

	app, err := h.applications.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Application not found")
			return
		}
		internalError(c, h.logger, "Failed to get application", err)
		return
	}

	job, err := h.jobs.GetJobByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Application not found")
			return
		}
		internalError(c, h.logger, "Failed to get job", err)
		return
	}

	if job.EmployerID != sess.UserID {
		notFound(c, "Application not found")
		return
	}

	if err := h.applications.UpdateApplicationStatus(ctx, app.ApplicationID, req.Status); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			notFound(c, "Application not found")
		case errors.Is(err, domain.ErrInvalidStatus):
			badRequest(c, "Invalid status")
		default:
			internalError(c, h.logger, "Failed to update application status", err)
		}
		return
	}

	if req.Status != app.Status {
		publishEvent(ctx, h.logger, h.publisher, events.TypeApplicationStatusChanged, events.ApplicationPayload{
			ApplicationID: app.ApplicationID,
			JobID:         job.JobID,
			JobTitle:      job.JobTitle,
			EmployerID:    job.EmployerID,
			JobSeekerID:   app.JobSeekerID,
			Status:        req.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Application status updated",
	})
}

// ViewJobSeekerProfile handles GET /employer/user_profile/:user_id
func (h *ApplicationHandler) ViewJobSeekerProfile(c *gin.Context) {
	sess := CurrentSession(c)
	seekerID := c.Param("user_id")

	h.logger.Info("ViewJobSeekerProfile called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", seekerID),
	)

	ctx := c.Request.Context()

	applied, err := h.applications.HasAppliedToEmployer(ctx, seekerID, sess.UserID)
	if err != nil {
		internalError(c, h.logger, "Failed to check applications", err)
		return
	}
	if !applied {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied! This job seeker has not applied to your jobs",
		})
		return
	}

	seeker, err := h.accounts.GetJobSeekerByID(ctx, seekerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to get job seeker", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobSeekerDTO(seeker))
}
