package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/lib/pq"
)

func (s *Storage) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (
			application_id, job_id, job_seeker_id, status, applied_on, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		app.ApplicationID,
		app.JobID,
		app.JobSeekerID,
		app.Status,
		app.AppliedOn,
		app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyApplied
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (s *Storage) GetApplication(ctx context.Context, applicationID string) (*model.Application, error) {
	var app model.Application
	query := `
		SELECT application_id, job_id, job_seeker_id, status, applied_on, updated_at
		FROM applications
		WHERE application_id = $1
	`

	if err := s.db.GetContext(ctx, &app, query, applicationID); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// ListAppliedJobs returns the seeker's applications joined with their jobs
func (s *Storage) ListAppliedJobs(ctx context.Context, seekerID string) ([]model.AppliedJob, error) {
	query := fmt.Sprintf(`
		SELECT %s, a.application_id, a.status, a.applied_on
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.job_seeker_id = $1
		ORDER BY a.applied_on DESC, a.application_id DESC
	`, qualify("j", jobColumns))

	applied := []model.AppliedJob{}
	if err := s.db.SelectContext(ctx, &applied, query, seekerID); err != nil {
		return nil, fmt.Errorf("failed to list applied jobs: %w", err)
	}

	return applied, nil
}

// ListApplicants returns the applications to a job joined with the applying seekers
func (s *Storage) ListApplicants(ctx context.Context, jobID string) ([]model.Applicant, error) {
	query := `
		SELECT
			a.application_id, a.job_seeker_id, s.first_name, s.last_name,
			s.email, a.status, a.applied_on
		FROM applications a
		JOIN job_seekers s ON s.id = a.job_seeker_id
		WHERE a.job_id = $1
		ORDER BY a.applied_on ASC, a.application_id ASC
	`

	applicants := []model.Applicant{}
	if err := s.db.SelectContext(ctx, &applicants, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}

	return applicants, nil
}

func (s *Storage) UpdateApplicationStatus(ctx context.Context, applicationID, status string) error {
	if status != domain.ApplicationStatusApplied && !domain.IsReviewStatus(status) {
		return domain.ErrInvalidStatus
	}

	query := `UPDATE applications SET status = $2, updated_at = NOW() WHERE application_id = $1`

	res, err := s.db.ExecContext(ctx, query, applicationID, status)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// WithdrawApplication deletes the seeker's application if it is still open
func (s *Storage) WithdrawApplication(ctx context.Context, applicationID, seekerID string) error {
	query := `
		DELETE FROM applications
		WHERE application_id = $1 AND job_seeker_id = $2 AND status = ANY($3)
	`

	open := []string{domain.ApplicationStatusApplied, domain.ApplicationStatusUnderReview}

	res, err := s.db.ExecContext(ctx, query, applicationID, seekerID, pq.Array(open))
	if err != nil {
		return fmt.Errorf("failed to withdraw application: %w", err)
	}

	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// HasAppliedToEmployer reports whether the seeker applied to any job of the employer
func (s *Storage) HasAppliedToEmployer(ctx context.Context, seekerID, employerID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM applications a
			JOIN jobs j ON j.job_id = a.job_id
			WHERE a.job_seeker_id = $1 AND j.employer_id = $2
		)
	`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, seekerID, employerID); err != nil {
		return false, fmt.Errorf("failed to check applications: %w", err)
	}

	return exists, nil
}
