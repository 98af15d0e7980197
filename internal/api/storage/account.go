package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
)

const jobSeekerColumns = `id, first_name, last_name, email, password_hash,
	location, phone_number, role, education, work_experience,
	saved_jobs, created_at, updated_at`

const employerColumns = `id, first_name, last_name, email, password_hash,
	location, phone_number, role, company_name, company_description,
	company_industry, education, work_experience, created_at, updated_at`

func (s *Storage) CreateJobSeeker(ctx context.Context, seeker *model.JobSeeker) error {
	query := `
		INSERT INTO job_seekers (
			id, first_name, last_name, email, password_hash,
			location, phone_number, role, education, work_experience,
			saved_jobs, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13
		)
	`

	saved := seeker.SavedJobs
	if saved == nil {
		saved = []string{}
	}

	_, err := s.db.ExecContext(
		ctx,
		query,
		seeker.ID,
		seeker.FirstName,
		seeker.LastName,
		seeker.Email,
		seeker.PasswordHash,
		seeker.Location,
		seeker.PhoneNumber,
		seeker.Role,
		seeker.Education,
		seeker.WorkExperience,
		saved,
		seeker.CreatedAt,
		seeker.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create job seeker: %w", err)
	}

	return nil
}

func (s *Storage) GetJobSeekerByID(ctx context.Context, id string) (*model.JobSeeker, error) {
	return s.getJobSeeker(ctx, "id", id)
}

func (s *Storage) GetJobSeekerByEmail(ctx context.Context, email string) (*model.JobSeeker, error) {
	return s.getJobSeeker(ctx, "email", email)
}

func (s *Storage) getJobSeeker(ctx context.Context, column, value string) (*model.JobSeeker, error) {
	var seeker model.JobSeeker
	query := fmt.Sprintf(`SELECT %s FROM job_seekers WHERE %s = $1`, jobSeekerColumns, column)

	if err := s.db.GetContext(ctx, &seeker, query, value); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job seeker: %w", err)
	}

	return &seeker, nil
}

// UpdateJobSeekerProfile writes every profile field except the password
func (s *Storage) UpdateJobSeekerProfile(ctx context.Context, seeker *model.JobSeeker) error {
	query := `
		UPDATE job_seekers SET
			first_name = $2, last_name = $3, email = $4, location = $5,
			phone_number = $6, role = $7, education = $8, work_experience = $9,
			saved_jobs = $10, updated_at = NOW()
		WHERE id = $1
	`

	saved := seeker.SavedJobs
	if saved == nil {
		saved = []string{}
	}

	res, err := s.db.ExecContext(
		ctx,
		query,
		seeker.ID,
		seeker.FirstName,
		seeker.LastName,
		seeker.Email,
		seeker.Location,
		seeker.PhoneNumber,
		seeker.Role,
		seeker.Education,
		seeker.WorkExperience,
		saved,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to update job seeker: %w", err)
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

func (s *Storage) UpdateJobSeekerPassword(ctx context.Context, id, passwordHash string) error {
	return s.updatePassword(ctx, "job_seekers", id, passwordHash)
}

// AddSavedJob appends jobID to the seeker's saved jobs unless already present
func (s *Storage) AddSavedJob(ctx context.Context, seekerID, jobID string) error {
	query := `
		UPDATE job_seekers SET
			saved_jobs = CASE
				WHEN $2::text = ANY(saved_jobs) THEN saved_jobs
				ELSE array_append(saved_jobs, $2::text)
			END,
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, seekerID, jobID)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
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

func (s *Storage) RemoveSavedJob(ctx context.Context, seekerID, jobID string) error {
	query := `
		UPDATE job_seekers SET
			saved_jobs = array_remove(saved_jobs, $2::text),
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, seekerID, jobID)
	if err != nil {
		return fmt.Errorf("failed to remove saved job: %w", err)
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

func (s *Storage) CreateEmployer(ctx context.Context, employer *model.Employer) error {
	query := `
		INSERT INTO employers (
			id, first_name, last_name, email, password_hash,
			location, phone_number, role, company_name, company_description,
			company_industry, education, work_experience, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		employer.ID,
		employer.FirstName,
		employer.LastName,
		employer.Email,
		employer.PasswordHash,
		employer.Location,
		employer.PhoneNumber,
		employer.Role,
		employer.CompanyName,
		employer.CompanyDescription,
		employer.CompanyIndustry,
		employer.Education,
		employer.WorkExperience,
		employer.CreatedAt,
		employer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create employer: %w", err)
	}

	return nil
}

func (s *Storage) GetEmployerByID(ctx context.Context, id string) (*model.Employer, error) {
	return s.getEmployer(ctx, "id", id)
}

func (s *Storage) GetEmployerByEmail(ctx context.Context, email string) (*model.Employer, error) {
	return s.getEmployer(ctx, "email", email)
}

func (s *Storage) getEmployer(ctx context.Context, column, value string) (*model.Employer, error) {
	var employer model.Employer
	query := fmt.Sprintf(`SELECT %s FROM employers WHERE %s = $1`, employerColumns, column)

	if err := s.db.GetContext(ctx, &employer, query, value); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employer: %w", err)
	}

	return &employer, nil
}

func (s *Storage) UpdateEmployerProfile(ctx context.Context, employer *model.Employer) error {
	query := `
		UPDATE employers SET
			first_name = $2, last_name = $3, email = $4, location = $5,
			phone_number = $6, role = $7, company_name = $8,
			company_description = $9, company_industry = $10,
			education = $11, work_experience = $12, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		employer.ID,
		employer.FirstName,
		employer.LastName,
		employer.Email,
		employer.Location,
		employer.PhoneNumber,
		employer.Role,
		employer.CompanyName,
		employer.CompanyDescription,
		employer.CompanyIndustry,
		employer.Education,
		employer.WorkExperience,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to update employer: %w", err)
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

func (s *Storage) UpdateEmployerPassword(ctx context.Context, id, passwordHash string) error {
	return s.updatePassword(ctx, "employers", id, passwordHash)
}

func (s *Storage) updatePassword(ctx context.Context, table, id, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $2, updated_at = NOW() WHERE id = $1`, table)

	res, err := s.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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
