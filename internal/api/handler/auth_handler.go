package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/auth"
	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/dto"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterJobSeeker handles POST /user/register
func (h *AuthHandler) RegisterJobSeeker(c *gin.Context) {
	h.logger.Info("RegisterJobSeeker called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.JobSeekerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	req.Email = auth.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.passwords.Validate(req.Password, req.FirstName, req.LastName, req.Email); err != nil {
		badRequest(c, err.Error())
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		internalError(c, h.logger, "Failed to hash password", err)
		return
	}

	now := time.Now().UTC()
	seeker := model.JobSeeker{
		ID:             uuid.New().String(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   hash,
		Location:       req.Location,
		PhoneNumber:    req.PhoneNumber,
		Role:           req.Role,
		Education:      model.JSONList(req.Education),
		WorkExperience: model.JSONList(req.WorkExperience),
		SavedJobs:      []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.accounts.CreateJobSeeker(c.Request.Context(), &seeker); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			badRequest(c, "Email already in use")
			return
		}
		internalError(c, h.logger, "Failed to create job seeker", err)
		return
	}

	if !h.startSession(c, seeker.ID, domain.UserTypeJobSeeker) {
		return
	}

	h.logger.Info("Job seeker registered", slog.String("user_id", seeker.ID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Job Seeker Signup Successful!",
	})
}

// RegisterEmployer handles POST /employer/register
func (h *AuthHandler) RegisterEmployer(c *gin.Context) {
	h.logger.Info("RegisterEmployer called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.EmployerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	req.Email = auth.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.passwords.Validate(req.Password, req.FirstName, req.LastName, req.Email, req.CompanyName); err != nil {
		badRequest(c, err.Error())
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		internalError(c, h.logger, "Failed to hash password", err)
		return
	}

	now := time.Now().UTC()
	employer := model.Employer{
		ID:                 uuid.New().String(),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		PasswordHash:       hash,
		Location:           req.Location,
		PhoneNumber:        req.PhoneNumber,
		Role:               req.Role,
		CompanyName:        req.CompanyName,
		CompanyDescription: req.CompanyDescription,
		CompanyIndustry:    req.CompanyIndustry,
		Education:          model.JSONList(req.Education),
		WorkExperience:     model.JSONList(req.WorkExperience),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.accounts.CreateEmployer(c.Request.Context(), &employer); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			badRequest(c, "Email already in use")
			return
		}
		internalError(c, h.logger, "Failed to create employer", err)
		return
	}

	if !h.startSession(c, employer.ID, domain.UserTypeEmployer) {
		return
	}

	h.logger.Info("Employer registered", slog.String("user_id", employer.ID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Employer Signup Successful!",
	})
}

// LoginPage handles GET /user/login and GET /employer/login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "This is the login page",
	})
}

// Login returns the POST login handler for userType
func (h *AuthHandler) Login(userType string) gin.HandlerFunc {
	successMessage := "Job Seeker Login Successful"
	if userType == domain.UserTypeEmployer {
		successMessage = "Employer Login Successful"
	}

	return func(c *gin.Context) {
		h.logger.Info("Login called",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("user_type", userType),
		)

		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", slog.Any("error", err))
			badRequest(c, "Invalid request body")
			return
		}

		email, password := req.Credentials()
		if email == "" || password == "" {
			badRequest(c, "Email and password are required")
			return
		}
		email = auth.NormalizeEmail(email)

		userID, hash, err := h.lookupCredentials(c, userType, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			internalError(c, h.logger, "Failed to look up account", err)
			return
		}

		// Compare runs even for unknown emails so both paths cost one bcrypt check
		matched := h.passwords.Compare(hash, password)
		if err != nil || !matched {
			h.logger.Warn("Login failed",
				slog.String("user_type", userType),
				slog.String("ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		if !h.startSession(c, userID, userType) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": successMessage,
		})
	}
}

func (h *AuthHandler) lookupCredentials(c *gin.Context, userType, email string) (string, string, error) {
	ctx := c.Request.Context()

	if userType == domain.UserTypeEmployer {
		employer, err := h.accounts.GetEmployerByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return employer.ID, employer.PasswordHash, nil
	}

	seeker, err := h.accounts.GetJobSeekerByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	return seeker.ID, seeker.PasswordHash, nil
}

// startSession replaces any presented session with a fresh one and sets the
// cookie. It writes the error response itself and reports whether it succeeded.
func (h *AuthHandler) startSession(c *gin.Context, userID, userType string) bool {
	ctx := c.Request.Context()

	if oldID, err := c.Cookie(h.cookie.Name); err == nil && oldID != "" {
		if err := h.sessions.Delete(ctx, oldID); err != nil {
			h.logger.Warn("Failed to delete previous session", slog.Any("error", err))
		}
	}

	sess, err := h.sessions.Create(ctx, userID, userType)
	if err != nil {
		internalError(c, h.logger, "Failed to create session", err)
		return false
	}

	SetSessionCookie(c, h.cookie, sess.ID, h.sessions.TTL())
	return true
}

// Logout handles POST|GET /{user,employer}/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("Logout called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", sess.UserID),
	)

	if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		internalError(c, h.logger, "Failed to delete session", err)
		return
	}

	ClearSessionCookie(c, h.cookie)

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully Logout",
	})
}

// GetJobSeekerProfile handles GET /user/current and GET /user/profile
func (h *AuthHandler) GetJobSeekerProfile(c *gin.Context) {
	sess := CurrentSession(c)

	seeker, err := h.accounts.GetJobSeekerByID(c.Request.Context(), sess.UserID)
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

// GetEmployerProfile handles GET /employer/current and GET /employer/profile
func (h *AuthHandler) GetEmployerProfile(c *gin.Context) {
	sess := CurrentSession(c)

	employer, err := h.accounts.GetEmployerByID(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to get employer", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEmployerDTO(employer))
}

// UpdateJobSeekerProfile handles PUT|POST /user/profile
func (h *AuthHandler) UpdateJobSeekerProfile(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("UpdateJobSeekerProfile called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", sess.UserID),
	)

	var req dto.UpdateJobSeekerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	if req.Email != nil {
		normalized := auth.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

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

	req.ApplyTo(seeker)

	if err := h.accounts.UpdateJobSeekerProfile(ctx, seeker); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			badRequest(c, "Email already in use")
			return
		}
		internalError(c, h.logger, "Failed to update job seeker", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.NewJobSeekerDTO(seeker),
	})
}

// UpdateEmployerProfile handles PUT|POST /employer/profile
func (h *AuthHandler) UpdateEmployerProfile(c *gin.Context) {
	sess := CurrentSession(c)

	h.logger.Info("UpdateEmployerProfile called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", sess.UserID),
	)

	var req dto.UpdateEmployerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.Any("error", err))
		badRequest(c, "Invalid request body")
		return
	}

	if req.Email != nil {
		normalized := auth.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	employer, err := h.accounts.GetEmployerByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "User not found")
			return
		}
		internalError(c, h.logger, "Failed to get employer", err)
		return
	}

	req.ApplyTo(employer)

	if err := h.accounts.UpdateEmployerProfile(ctx, employer); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			badRequest(c, "Email already in use")
			return
		}
		internalError(c, h.logger, "Failed to update employer", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.NewEmployerDTO(employer),
	})
}

// UpdatePassword returns the handler for PUT|POST /{user,employer}/updatepassword
func (h *AuthHandler) UpdatePassword(userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)

		h.logger.Info("UpdatePassword called",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("user_id", sess.UserID),
		)

		var req dto.UpdatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", slog.Any("error", err))
			badRequest(c, "Invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			badRequest(c, "Old password and new password are required")
			return
		}

		ctx := c.Request.Context()

		var (
			hash   string
			inputs []string
		)
		if userType == domain.UserTypeEmployer {
			employer, err := h.accounts.GetEmployerByID(ctx, sess.UserID)
			if err != nil {
				h.accountLookupFailed(c, err)
				return
			}
			hash = employer.PasswordHash
			inputs = []string{employer.FirstName, employer.LastName, employer.Email, employer.CompanyName}
		} else {
			seeker, err := h.accounts.GetJobSeekerByID(ctx, sess.UserID)
			if err != nil {
				h.accountLookupFailed(c, err)
				return
			}
			hash = seeker.PasswordHash
			inputs = []string{seeker.FirstName, seeker.LastName, seeker.Email}
		}

		if !h.passwords.Compare(hash, req.OldPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Old password is incorrect",
			})
			return
		}

		if err := h.passwords.Validate(req.NewPassword, inputs...); err != nil {
			badRequest(c, err.Error())
			return
		}

		newHash, err := h.passwords.Hash(req.NewPassword)
		if err != nil {
			internalError(c, h.logger, "Failed to hash password", err)
			return
		}

		if userType == domain.UserTypeEmployer {
			err = h.accounts.UpdateEmployerPassword(ctx, sess.UserID, newHash)
		} else {
			err = h.accounts.UpdateJobSeekerPassword(ctx, sess.UserID, newHash)
		}
		if err != nil {
			internalError(c, h.logger, "Failed to update password", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Password updated successfully",
		})
	}
}

func (h *AuthHandler) accountLookupFailed(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		notFound(c, "User not found")
		return
	}
	internalError(c, h.logger, "Failed to get account", err)
}
