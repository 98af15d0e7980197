package router

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	if len(deps.AllowOrigins) > 0 {
		r.Use(CORSMiddleware(deps.AllowOrigins, deps.CORSMaxAge))
	}

	r.GET("/health", healthHandler(deps))

	authHandler := handler.NewAuthHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)
	homeHandler := handler.NewHomeHandler(deps)

	requireSession := RequireSession(deps)
	seekerOnly := RequireUserType(domain.UserTypeJobSeeker)
	employerOnly := RequireUserType(domain.UserTypeEmployer)

	r.GET("/", homeHandler.Root)

	api := r.Group("/api")
	{
		api.GET("/", homeHandler.LatestJobs)
		api.GET("/current_user", requireSession, homeHandler.CurrentUser)
		api.GET("/dashboard/", requireSession, homeHandler.Dashboard)
	}

	user := r.Group("/user")
	{
		user.POST("/register", authHandler.RegisterJobSeeker)
		user.POST("/signup", authHandler.RegisterJobSeeker)
		user.GET("/login", authHandler.LoginPage)
		user.POST("/login", authHandler.Login(domain.UserTypeJobSeeker))

		seeker := user.Group("", requireSession, seekerOnly)
		{
			seeker.POST("/logout", authHandler.Logout)
			seeker.GET("/logout", authHandler.Logout)

			seeker.GET("/current", authHandler.GetJobSeekerProfile)
			seeker.GET("/profile", authHandler.GetJobSeekerProfile)
			seeker.PUT("/profile", authHandler.UpdateJobSeekerProfile)
			seeker.POST("/profile", authHandler.UpdateJobSeekerProfile)
			seeker.PUT("/updatepassword", authHandler.UpdatePassword(domain.UserTypeJobSeeker))
			seeker.POST("/updatepassword", authHandler.UpdatePassword(domain.UserTypeJobSeeker))

			seeker.GET("/searchjobs", jobHandler.SearchJobs)
			seeker.GET("/job/:job_id", jobHandler.GetJob)

			seeker.POST("/applyjobs/:job_id", applicationHandler.Apply)
			seeker.GET("/appliedjobs", applicationHandler.ListAppliedJobs)
			seeker.DELETE("/applications/:application_id", applicationHandler.Withdraw)

			seeker.GET("/saved-jobs", jobHandler.ListSavedJobs)
			seeker.POST("/saved-jobs/:job_id", jobHandler.SaveJob)
			seeker.DELETE("/saved-jobs/:job_id", jobHandler.UnsaveJob)

			seeker.GET("/notifications", notificationHandler.ListNotifications)
			seeker.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
		}
	}

	employer := r.Group("/employer")
	{
		employer.POST("/register", authHandler.RegisterEmployer)
		employer.POST("/signup", authHandler.RegisterEmployer)
		employer.GET("/login", authHandler.LoginPage)
		employer.POST("/login", authHandler.Login(domain.UserTypeEmployer))

		own := employer.Group("", requireSession, employerOnly)
		{
			own.POST("/logout", authHandler.Logout)
			own.GET("/logout", authHandler.Logout)

			own.GET("/current", authHandler.GetEmployerProfile)
			own.GET("/profile", authHandler.GetEmployerProfile)
			own.PUT("/profile", authHandler.UpdateEmployerProfile)
			own.POST("/profile", authHandler.UpdateEmployerProfile)
			own.PUT("/updatepassword", authHandler.UpdatePassword(domain.UserTypeEmployer))
			own.POST("/updatepassword", authHandler.UpdatePassword(domain.UserTypeEmployer))

			own.POST("/postjob", jobHandler.PostJob)
			own.GET("/viewjobs", jobHandler.ListEmployerJobs)
			own.GET("/viewjobs/:job_id", jobHandler.GetEmployerJob)
			own.GET("/job/:job_id", jobHandler.GetEmployerJob)
			own.GET("/job/:job_id/applicants", jobHandler.ListApplicants)
			own.PATCH("/updatejob/:job_id", jobHandler.UpdateJob)
			own.PUT("/updatejob/:job_id", jobHandler.UpdateJob)
			own.DELETE("/deletejob/:job_id", jobHandler.DeleteJob)

			own.GET("/user_profile/:user_id", applicationHandler.ViewJobSeekerProfile)
			own.PUT("/applicant/:application_id/status", applicationHandler.UpdateStatus)

			own.GET("/notifications", notificationHandler.ListNotifications)
			own.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
		}
	}

	return r
}

func healthHandler(deps *handler.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]string, len(deps.HealthChecks))
		healthy := true

		for name, check := range deps.HealthChecks {
			if err := check(c.Request.Context()); err != nil {
				deps.Logger.Error("Health check failed",
					slog.String("component", name),
					slog.Any("error", err),
				)
				checks[name] = "unhealthy"
				healthy = false
				continue
			}
			checks[name] = "healthy"
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":  overall,
			"service": deps.ServiceName,
			"checks":  checks,
		})
	}
}
