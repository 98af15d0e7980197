package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const jobColumns = `job_id, employer_id, req_id, job_title, job_category,
	employment_type, job_address, job_city, job_state, job_zip,
	job_description, job_qualifications, job_skills, job_salary,
	company_name, company_description, company_industry,
	created_at, updated_at`

type JobFilter struct {
	Keyword  string
	Location string
	Page     int
	Limit    int
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, employer_id, req_id, job_title, job_category,
			employment_type, job_address, job_city, job_state, job_zip,
			job_description, job_qualifications, job_skills, job_salary,
			company_name, company_description, company_industry,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.EmployerID,
		job.ReqID,
		job.JobTitle,
		job.JobCategory,
		job.EmploymentType,
		job.JobAddress,
		job.JobCity,
		job.JobState,
		job.JobZip,
		job.JobDescription,
		job.JobQualifications,
		job.JobSkills,
		job.JobSalary,
		job.CompanyName,
		job.CompanyDescription,
		job.CompanyIndustry,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReqID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE job_id = $1`, jobColumns)

	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJob overwrites the editable fields of a job owned by job.EmployerID
func (s *Storage) UpdateJob(ctx context.Context, job *model.Job) error {
	query := `
		UPDATE jobs SET
			req_id = $3, job_title = $4, job_category = $5,
			employment_type = $6, job_address = $7, job_city = $8,
			job_state = $9, job_zip = $10, job_description = $11,
			job_qualifications = $12, job_skills = $13, job_salary = $14,
			company_name = $15, company_description = $16,
			company_industry = $17, updated_at = NOW()
		WHERE job_id = $1 AND employer_id = $2
		RETURNING updated_at
	`

	err := s.db.GetContext(
		ctx,
		&job.UpdatedAt,
		query,
		job.JobID,
		job.EmployerID,
		job.ReqID,
		job.JobTitle,
		job.JobCategory,
		job.EmploymentType,
		job.JobAddress,
		job.JobCity,
		job.JobState,
		job.JobZip,
		job.JobDescription,
		job.JobQualifications,
		job.JobSkills,
		job.JobSalary,
		job.CompanyName,
		job.CompanyDescription,
		job.CompanyIndustry,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReqID
		}
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

// DeleteJob removes an employer's job together with its applications and
// drops it from every saved-jobs list. It returns the ids of the job seekers
// who had applied.
func (s *Storage) DeleteJob(ctx context.Context, jobID, employerID string) ([]string, error) {
	var applicantIDs []string

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var owner string
		err := tx.GetContext(ctx, &owner, `SELECT employer_id FROM jobs WHERE job_id = $1 FOR UPDATE`, jobID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}
		if owner != employerID {
			return domain.ErrNotFound
		}

		err = tx.SelectContext(ctx, &applicantIDs,
			`DELETE FROM applications WHERE job_id = $1 RETURNING job_seeker_id`, jobID)
		if err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE job_seekers SET saved_jobs = array_remove(saved_jobs, $1::text) WHERE $1::text = ANY(saved_jobs)`, jobID)
		if err != nil {
			return fmt.Errorf("failed to unsave job: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return applicantIDs, nil
}

func (s *Storage) ListJobsByEmployer(ctx context.Context, employerID string) ([]model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE employer_id = $1
		ORDER BY created_at DESC, job_id DESC
	`, jobColumns)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, employerID); err != nil {
		return nil, fmt.Errorf("failed to list employer jobs: %w", err)
	}

	return jobs, nil
}

func (s *Storage) LatestJobs(ctx context.Context, limit int) ([]model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		ORDER BY created_at DESC, job_id DESC
		LIMIT $1
	`, jobColumns)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list latest jobs: %w", err)
	}

	return jobs, nil
}

func (s *Storage) SearchJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE 1=1
	`, jobColumns)
	args := []interface{}{}
	argIdx := 1

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query += fmt.Sprintf(
			" AND (search_vector @@ plainto_tsquery('english', $%d) OR job_title ILIKE $%d)",
			argIdx, argIdx+1,
		)
		args = append(args, keyword, containsPattern(keyword))
		argIdx += 2
	}

	if location := strings.TrimSpace(filter.Location); location != "" {
		query += fmt.Sprintf(
			" AND (job_city ILIKE $%d OR job_state ILIKE $%d OR job_zip ILIKE $%d OR job_address ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		)
		args = append(args, containsPattern(location))
		argIdx++
	}

	query += " ORDER BY created_at DESC, job_id DESC"

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	return jobs, nil
}

// GetJobsByIDs returns the jobs that still exist among ids, newest first
func (s *Storage) GetJobsByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	jobs := []model.Job{}
	if len(ids) == 0 {
		return jobs, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE job_id = ANY($1)
		ORDER BY created_at DESC, job_id DESC
	`, jobColumns)

	if err := s.db.SelectContext(ctx, &jobs, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}

	return jobs, nil
}
