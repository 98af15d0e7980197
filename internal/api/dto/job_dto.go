package dto

import (
	"strings"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxReqIDLength = 64
	maxTitleLength = 200
)

// CreateJobRequest represents the body of POST /employer/postjob
type CreateJobRequest struct {
	ReqID              string `json:"reqId"`
	JobTitle           string `json:"jobTitle"`
	JobCategory        string `json:"jobCategory"`
	EmploymentType     string `json:"employmentType"`
	JobAddress         string `json:"jobAddress"`
	JobCity            string `json:"jobCity"`
	JobState           string `json:"jobState"`
	JobZip             string `json:"jobZip"`
	JobDescription     string `json:"jobDescription"`
	JobQualifications  string `json:"jobQualifications"`
	JobSkills          string `json:"jobSkills"`
	JobSalary          string `json:"jobSalary"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyIndustry    string `json:"companyIndustry"`
}

func (r CreateJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReqID, validation.Required, validation.Length(1, maxReqIDLength)),
		validation.Field(&r.JobTitle, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

// ToModel builds a job owned by employerID with fresh id and timestamps
func (r CreateJobRequest) ToModel(jobID, employerID string, now time.Time) *model.Job {
	return &model.Job{
		JobID:              jobID,
		EmployerID:         employerID,
		ReqID:              strings.TrimSpace(r.ReqID),
		JobTitle:           strings.TrimSpace(r.JobTitle),
		JobCategory:        strings.TrimSpace(r.JobCategory),
		EmploymentType:     strings.TrimSpace(r.EmploymentType),
		JobAddress:         strings.TrimSpace(r.JobAddress),
		JobCity:            strings.TrimSpace(r.JobCity),
		JobState:           strings.TrimSpace(r.JobState),
		JobZip:             strings.TrimSpace(r.JobZip),
		JobDescription:     r.JobDescription,
		JobQualifications:  r.JobQualifications,
		JobSkills:          r.JobSkills,
		JobSalary:          strings.TrimSpace(r.JobSalary),
		CompanyName:        strings.TrimSpace(r.CompanyName),
		CompanyDescription: r.CompanyDescription,
		CompanyIndustry:    strings.TrimSpace(r.CompanyIndustry),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// UpdateJobRequest is a partial update of a job
type UpdateJobRequest struct {
	ReqID              *string `json:"reqId"`
	JobTitle           *string `json:"jobTitle"`
	JobCategory        *string `json:"jobCategory"`
	EmploymentType     *string `json:"employmentType"`
	JobAddress         *string `json:"jobAddress"`
	JobCity            *string `json:"jobCity"`
	JobState           *string `json:"jobState"`
	JobZip             *string `json:"jobZip"`
	JobDescription     *string `json:"jobDescription"`
	JobQualifications  *string `json:"jobQualifications"`
	JobSkills          *string `json:"jobSkills"`
	JobSalary          *string `json:"jobSalary"`
	CompanyName        *string `json:"companyName"`
	CompanyDescription *string `json:"companyDescription"`
	CompanyIndustry    *string `json:"companyIndustry"`
}

func (r UpdateJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReqID, validation.NilOrNotEmpty, validation.Length(1, maxReqIDLength)),
		validation.Field(&r.JobTitle, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
	)
}

func (r UpdateJobRequest) ApplyTo(job *model.Job) {
	setString(&job.ReqID, r.ReqID)
	setString(&job.JobTitle, r.JobTitle)
	setString(&job.JobCategory, r.JobCategory)
	setString(&job.EmploymentType, r.EmploymentType)
	setString(&job.JobAddress, r.JobAddress)
	setString(&job.JobCity, r.JobCity)
	setString(&job.JobState, r.JobState)
	setString(&job.JobZip, r.JobZip)
	setString(&job.JobDescription, r.JobDescription)
	setString(&job.JobQualifications, r.JobQualifications)
	setString(&job.JobSkills, r.JobSkills)
	setString(&job.JobSalary, r.JobSalary)
	setString(&job.CompanyName, r.CompanyName)
	setString(&job.CompanyDescription, r.CompanyDescription)
	setString(&job.CompanyIndustry, r.CompanyIndustry)
}

// SearchJobsRequest represents the query of GET /user/searchjobs
type SearchJobsRequest struct {
	Keyword  string `form:"keyword"`
	Location string `form:"location"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type JobDTO struct {
	JobID              string `json:"_id"`
	EmployerID         string `json:"employerId"`
	ReqID              string `json:"reqId"`
	JobTitle           string `json:"jobTitle"`
	JobCategory        string `json:"jobCategory"`
	EmploymentType     string `json:"employmentType"`
	JobAddress         string `json:"jobAddress"`
	JobCity            string `json:"jobCity"`
	JobState           string `json:"jobState"`
	JobZip             string `json:"jobZip"`
	JobDescription     string `json:"jobDescription"`
	JobQualifications  string `json:"jobQualifications"`
	JobSkills          string `json:"jobSkills"`
	JobSalary          string `json:"jobSalary"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyIndustry    string `json:"companyIndustry"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

func NewJobDTO(j *model.Job) JobDTO {
	return JobDTO{
		JobID:              j.JobID,
		EmployerID:         j.EmployerID,
		ReqID:              j.ReqID,
		JobTitle:           j.JobTitle,
		JobCategory:        j.JobCategory,
		EmploymentType:     j.EmploymentType,
		JobAddress:         j.JobAddress,
		JobCity:            j.JobCity,
		JobState:           j.JobState,
		JobZip:             j.JobZip,
		JobDescription:     j.JobDescription,
		JobQualifications:  j.JobQualifications,
		JobSkills:          j.JobSkills,
		JobSalary:          j.JobSalary,
		CompanyName:        j.CompanyName,
		CompanyDescription: j.CompanyDescription,
		CompanyIndustry:    j.CompanyIndustry,
		CreatedAt:          j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          j.UpdatedAt.Format(time.RFC3339),
	}
}

func NewJobDTOs(jobs []model.Job) []JobDTO {
	out := make([]JobDTO, len(jobs))
	for i := range jobs {
		out[i] = NewJobDTO(&jobs[i])
	}
	return out
}

// SearchJobsResponse is also the value stored in the search cache
type SearchJobsResponse struct {
	SearchJobData []JobDTO `json:"search_job_data"`
	Page          int      `json:"page"`
	Limit         int      `json:"limit"`
}

// EmployerJobResponse is an employer's own job with its applicants
type EmployerJobResponse struct {
	JobDTO
	Applicants []ApplicantDTO `json:"applicants"`
}

// AppliedJobDTO is a job seen from the seeker's applications list
type AppliedJobDTO struct {
	JobDTO
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	AppliedOn     string `json:"applied_on"`
}

func NewAppliedJobDTOs(applied []model.AppliedJob) []AppliedJobDTO {
	out := make([]AppliedJobDTO, len(applied))
	for i := range applied {
		out[i] = AppliedJobDTO{
			JobDTO:        NewJobDTO(&applied[i].Job),
			ApplicationID: applied[i].ApplicationID,
			Status:        applied[i].Status,
			AppliedOn:     applied[i].AppliedOn.Format(time.RFC3339),
		}
	}
	return out
}

type ApplicantDTO struct {
	ApplicationID string `json:"application_id"`
	UserID        string `json:"user_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	AppliedOn     string `json:"applied_on"`
}

func NewApplicantDTOs(applicants []model.Applicant) []ApplicantDTO {
	out := make([]ApplicantDTO, len(applicants))
	for i, a := range applicants {
		out[i] = ApplicantDTO{
			ApplicationID: a.ApplicationID,
			UserID:        a.JobSeekerID,
			FirstName:     a.FirstName,
			LastName:      a.LastName,
			Email:         a.Email,
			Status:        a.Status,
			AppliedOn:     a.AppliedOn.Format(time.RFC3339),
		}
	}
	return out
}

// UpdateApplicationStatusRequest represents the body of
// PUT /employer/applicant/:application_id/status
type UpdateApplicationStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateApplicationStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(
				domain.ApplicationStatusUnderReview,
				domain.ApplicationStatusAccepted,
				domain.ApplicationStatusRejected,
			).Error("status must be one of under_review, accepted, rejected"),
		),
	)
}

type ApplicationDTO struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	AppliedOn     string `json:"applied_on"`
}

func NewApplicationDTO(a *model.Application) ApplicationDTO {
	return ApplicationDTO{
		ApplicationID: a.ApplicationID,
		JobID:         a.JobID,
		UserID:        a.JobSeekerID,
		Status:        a.Status,
		AppliedOn:     a.AppliedOn.Format(time.RFC3339),
	}
}

type NotificationDTO struct {
	ID          string `json:"_id"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	ReferenceID string `json:"referenceId"`
	IsRead      bool   `json:"isRead"`
	CreatedAt   string `json:"createdAt"`
}

func NewNotificationDTOs(notifications []model.Notification) []NotificationDTO {
	out := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		out[i] = NotificationDTO{
			ID:          n.NotificationID,
			Kind:        n.Kind,
			Message:     n.Message,
			ReferenceID: n.ReferenceID,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}
