package router

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/handler"
	"github.com/cuongbtq/jobsnearby/internal/api/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware allows the configured frontends to call the API with cookies
func CORSMiddleware(allowOrigins []string, maxAge time.Duration) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = allowOrigins
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"}
	if maxAge > 0 {
		config.MaxAge = maxAge
	}
	return cors.New(config)
}

// RequireSession resolves the session cookie and refreshes the session expiry
func RequireSession(deps *handler.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(deps.Cookie.Name)
		if err != nil || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		ctx := c.Request.Context()
		sess, err := deps.Sessions.Get(ctx, id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				handler.ClearSessionCookie(c, deps.Cookie)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Unauthorized",
				})
				return
			}
			deps.Logger.Error("Failed to load session", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}

		if !domain.IsValidUserType(sess.UserType) {
			deps.Logger.Warn("Session has unknown user type",
				slog.String("user_id", sess.UserID),
				slog.String("user_type", sess.UserType),
			)
			if err := deps.Sessions.Delete(ctx, sess.ID); err != nil {
				deps.Logger.Error("Failed to delete session", slog.Any("error", err))
			}
			handler.ClearSessionCookie(c, deps.Cookie)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		if err := deps.Sessions.Touch(ctx, sess.ID); err != nil {
			deps.Logger.Warn("Failed to refresh session",
				slog.String("user_id", sess.UserID),
				slog.Any("error", err),
			)
		} else {
			handler.SetSessionCookie(c, deps.Cookie, sess.ID, deps.Sessions.TTL())
		}

		c.Set(handler.SessionContextKey, sess)
		c.Next()
	}
}

// RequireUserType rejects sessions of any other user type with 403
func RequireUserType(userType string) gin.HandlerFunc {
	message := "Access denied! Only job seekers can access this resource"
	if userType == domain.UserTypeEmployer {
		message = "Access denied! Only employers can access this resource"
	}

	return func(c *gin.Context) {
		sess := handler.CurrentSession(c)
		if sess == nil || sess.UserType != userType {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": message,
			})
			return
		}
		c.Next()
	}
}
