package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// JSONList is a list of free-form profile entries (education, work
// experience) stored as a JSONB array.
type JSONList []map[string]interface{}

// Value implements driver.Valuer
func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *JSONList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = JSONList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONList source type %T", src)
	}
	return json.Unmarshal(data, l)
}

type JobSeeker struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Location       string         `db:"location"`
	PhoneNumber    string         `db:"phone_number"`
	Role           string         `db:"role"`
	Education      JSONList       `db:"education"`
	WorkExperience JSONList       `db:"work_experience"`
	SavedJobs      pq.StringArray `db:"saved_jobs"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type Employer struct {
	ID                 string    `db:"id"`
	FirstName          string    `db:"first_name"`
	LastName           string    `db:"last_name"`
	Email              string    `db:"email"`
	PasswordHash       string    `db:"password_hash"`
	Location           string    `db:"location"`
	PhoneNumber        string    `db:"phone_number"`
	Role               string    `db:"role"`
	CompanyName        string    `db:"company_name"`
	CompanyDescription string    `db:"company_description"`
	CompanyIndustry    string    `db:"company_industry"`
	Education          JSONList  `db:"education"`
	WorkExperience     JSONList  `db:"work_experience"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type Job struct {
	JobID              string    `db:"job_id"`
	EmployerID         string    `db:"employer_id"`
	ReqID              string    `db:"req_id"`
	JobTitle           string    `db:"job_title"`
	JobCategory        string    `db:"job_category"`
	EmploymentType     string    `db:"employment_type"`
	JobAddress         string    `db:"job_address"`
	JobCity            string    `db:"job_city"`
	JobState           string    `db:"job_state"`
	JobZip             string    `db:"job_zip"`
	JobDescription     string    `db:"job_description"`
	JobQualifications  string    `db:"job_qualifications"`
	JobSkills          string    `db:"job_skills"`
	JobSalary          string    `db:"job_salary"`
	CompanyName        string    `db:"company_name"`
	CompanyDescription string    `db:"company_description"`
	CompanyIndustry    string    `db:"company_industry"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type Application struct {
	ApplicationID string    `db:"application_id"`
	JobID         string    `db:"job_id"`
	JobSeekerID   string    `db:"job_seeker_id"`
	Status        string    `db:"status"`
	AppliedOn     time.Time `db:"applied_on"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// AppliedJob is a job seeker's application joined with its job
type AppliedJob struct {
	Job
	ApplicationID string    `db:"application_id"`
	Status        string    `db:"status"`
	AppliedOn     time.Time `db:"applied_on"`
}

// Applicant is an application joined with the applying job seeker
type Applicant struct {
	ApplicationID string    `db:"application_id"`
	JobSeekerID   string    `db:"job_seeker_id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	Status        string    `db:"status"`
	AppliedOn     time.Time `db:"applied_on"`
}

type Notification struct {
	NotificationID string    `db:"notification_id"`
	EventID        string    `db:"event_id"`
	RecipientID    string    `db:"recipient_id"`
	RecipientType  string    `db:"recipient_type"`
	Kind           string    `db:"kind"`
	Message        string    `db:"message"`
	ReferenceID    string    `db:"reference_id"`
	IsRead         bool      `db:"is_read"`
	CreatedAt      time.Time `db:"created_at"`
}
