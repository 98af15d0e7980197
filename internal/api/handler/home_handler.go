package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Root handles GET /
func (h *HomeHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "OK",
	})
}

// LatestJobs handles GET /api/
func (h *HomeHandler) LatestJobs(c *gin.Context) {
	jobs, err := h.jobs.LatestJobs(c.Request.Context(), latestJobsLimit)
	if err != nil {
		internalError(c, h.logger, "Failed to list latest jobs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs": dto.NewJobDTOs(jobs),
	})
}

// CurrentUser handles GET /api/current_user
func (h *HomeHandler) CurrentUser(c *gin.Context) {
	sess := CurrentSession(c)

	c.JSON(http.StatusOK, gin.H{
		"authenticated":   true,
		"currentUserType": sess.UserType,
		"message":         "User is authenticated.",
	})
}

// Dashboard handles GET /api/dashboard/
func (h *HomeHandler) Dashboard(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("Dashboard called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_type", sess.UserType),
	)

	ctx := c.Request.Context()

	switch sess.UserType {
	case domain.UserTypeJobSeeker:
		applied, err := h.applications.ListAppliedJobs(ctx, sess.UserID)
		if err != nil {
			internalError(c, h.logger, "Failed to list applied jobs", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"applied_jobs": dto.NewAppliedJobDTOs(applied),
		})
	case domain.UserTypeEmployer:
		posted, err := h.jobs.ListJobsByEmployer(ctx, sess.UserID)
		if err != nil {
			internalError(c, h.logger, "Failed to list employer jobs", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"posted_jobs": dto.NewJobDTOs(posted),
		})
	default:
		internalError(c, h.logger, "Unknown user type in session", errors.New(sess.UserType))
	}
}
