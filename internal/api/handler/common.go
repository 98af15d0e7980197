package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/session"
	"github.com/cuongbtq/jobsnearby/internal/events"
	"github.com/gin-gonic/gin"
)

// SessionContextKey is the gin context key the session middleware stores the
// resolved *session.Session under
const SessionContextKey = "session"

const (
	defaultPage       = 1
	maxPage           = 10000
	defaultLimit      = 10
	maxLimit          = 50
	latestJobsLimit   = 10
	notificationLimit = 50
)

// CurrentSession returns the session attached by the session middleware
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SetSessionCookie writes the session cookie valid for ttl
func SetSessionCookie(c *gin.Context, cfg CookieConfig, sessionID string, ttl time.Duration) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, sessionID, int(ttl.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie in the browser
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// NormalizePage applies defaults and bounds to page and limit query values.
// The page cap keeps (page-1)*limit far from overflowing.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func internalError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	logger.Error(msg,
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": msg,
	})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": msg,
	})
}

// publishEvent sends an event after a committed change. Failures are logged
// and never surface to the caller.
func publishEvent(ctx context.Context, logger *slog.Logger, publisher EventPublisher, eventType string, payload interface{}) {
	if publisher == nil {
		return
	}

	event, err := events.New(eventType, payload)
	if err != nil {
		logger.Error("Failed to build event",
			slog.String("type", eventType),
			slog.Any("error", err),
		)
		return
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			slog.String("type", eventType),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
