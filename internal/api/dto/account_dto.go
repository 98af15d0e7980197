package dto

import (
	"strings"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/api/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const maxNameLength = 100

// JobSeekerSignupRequest represents the body of POST /user/register
type JobSeekerSignupRequest struct {
	FirstName      string                   `json:"jobSeekerFirstName"`
	LastName       string                   `json:"jobSeekerLastName"`
	Email          string                   `json:"jobSeekerEmail"`
	Password       string                   `json:"jobSeekerPassword"`
	Location       string                   `json:"jobSeekerLocation"`
	PhoneNumber    string                   `json:"jobSeekerPhoneNumber"`
	Role           string                   `json:"jobSeekerRole"`
	Education      []map[string]interface{} `json:"jobSeekerEducation"`
	WorkExperience []map[string]interface{} `json:"jobSeekerWorkExperience"`
}

// Validate checks the fields that do not need the password policy
func (r JobSeekerSignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// EmployerSignupRequest represents the body of POST /employer/register
type EmployerSignupRequest struct {
	FirstName          string                   `json:"employerFirstName"`
	LastName           string                   `json:"employerLastName"`
	Email              string                   `json:"employerEmail"`
	Password           string                   `json:"employerPassword"`
	Location           string                   `json:"employerLocation"`
	PhoneNumber        string                   `json:"employerPhoneNumber"`
	Role               string                   `json:"employerRole"`
	CompanyName        string                   `json:"employerCompanyName"`
	CompanyDescription string                   `json:"employerCompanyDescription"`
	CompanyIndustry    string                   `json:"employerCompanyIndustry"`
	Education          []map[string]interface{} `json:"employerEducation"`
	WorkExperience     []map[string]interface{} `json:"employerWorkExperience"`
}

func (r EmployerSignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginRequest accepts both the generic and the role prefixed field names
type LoginRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	JobSeekerEmail    string `json:"jobSeekerEmail"`
	JobSeekerPassword string `json:"jobSeekerPassword"`
	EmployerEmail     string `json:"employerEmail"`
	EmployerPassword  string `json:"employerPassword"`
}

// Credentials returns the first non-empty email and password
func (r LoginRequest) Credentials() (string, string) {
	return firstNonEmpty(r.Email, r.JobSeekerEmail, r.EmployerEmail),
		firstNonEmpty(r.Password, r.JobSeekerPassword, r.EmployerPassword)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// UpdatePasswordRequest represents the body of PUT /{user,employer}/updatepassword
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// UpdateJobSeekerProfileRequest is a partial update; nil fields are left alone.
// A password sent here is ignored.
type UpdateJobSeekerProfileRequest struct {
	FirstName      *string                   `json:"jobSeekerFirstName"`
	LastName       *string                   `json:"jobSeekerLastName"`
	Email          *string                   `json:"jobSeekerEmail"`
	Location       *string                   `json:"jobSeekerLocation"`
	PhoneNumber    *string                   `json:"jobSeekerPhoneNumber"`
	Role           *string                   `json:"jobSeekerRole"`
	Education      *[]map[string]interface{} `json:"jobSeekerEducation"`
	WorkExperience *[]map[string]interface{} `json:"jobSeekerWorkExperience"`
	SavedJobs      *[]string                 `json:"jobSeekerSavedJobs"`
}

func (r UpdateJobSeekerProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
	)
}

// ApplyTo copies the fields present in the request onto seeker
func (r UpdateJobSeekerProfileRequest) ApplyTo(seeker *model.JobSeeker) {
	setString(&seeker.FirstName, r.FirstName)
	setString(&seeker.LastName, r.LastName)
	setString(&seeker.Email, r.Email)
	setString(&seeker.Location, r.Location)
	setString(&seeker.PhoneNumber, r.PhoneNumber)
	setString(&seeker.Role, r.Role)
	if r.Education != nil {
		seeker.Education = model.JSONList(*r.Education)
	}
	if r.WorkExperience != nil {
		seeker.WorkExperience = model.JSONList(*r.WorkExperience)
	}
	if r.SavedJobs != nil {
		seeker.SavedJobs = dedupe(*r.SavedJobs)
	}
}

type UpdateEmployerProfileRequest struct {
	FirstName          *string                   `json:"employerFirstName"`
	LastName           *string                   `json:"employerLastName"`
	Email              *string                   `json:"employerEmail"`
	Location           *string                   `json:"employerLocation"`
	PhoneNumber        *string                   `json:"employerPhoneNumber"`
	Role               *string                   `json:"employerRole"`
	CompanyName        *string                   `json:"employerCompanyName"`
	CompanyDescription *string                   `json:"employerCompanyDescription"`
	CompanyIndustry    *string                   `json:"employerCompanyIndustry"`
	Education          *[]map[string]interface{} `json:"employerEducation"`
	WorkExperience     *[]map[string]interface{} `json:"employerWorkExperience"`
}

func (r UpdateEmployerProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
	)
}

func (r UpdateEmployerProfileRequest) ApplyTo(employer *model.Employer) {
	setString(&employer.FirstName, r.FirstName)
	setString(&employer.LastName, r.LastName)
	setString(&employer.Email, r.Email)
	setString(&employer.Location, r.Location)
	setString(&employer.PhoneNumber, r.PhoneNumber)
	setString(&employer.Role, r.Role)
	setString(&employer.CompanyName, r.CompanyName)
	setString(&employer.CompanyDescription, r.CompanyDescription)
	setString(&employer.CompanyIndustry, r.CompanyIndustry)
	if r.Education != nil {
		employer.Education = model.JSONList(*r.Education)
	}
	if r.WorkExperience != nil {
		employer.WorkExperience = model.JSONList(*r.WorkExperience)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// JobSeekerDTO is the public view of a job seeker; it never carries the password
type JobSeekerDTO struct {
	ID             string                   `json:"_id"`
	FirstName      string                   `json:"jobSeekerFirstName"`
	LastName       string                   `json:"jobSeekerLastName"`
	Email          string                   `json:"jobSeekerEmail"`
	Location       string                   `json:"jobSeekerLocation"`
	PhoneNumber    string                   `json:"jobSeekerPhoneNumber"`
	Role           string                   `json:"jobSeekerRole"`
	Education      []map[string]interface{} `json:"jobSeekerEducation"`
	WorkExperience []map[string]interface{} `json:"jobSeekerWorkExperience"`
	SavedJobs      []string                 `json:"jobSeekerSavedJobs"`
	CreatedAt      string                   `json:"createdAt"`
	UpdatedAt      string                   `json:"updatedAt"`
}

func NewJobSeekerDTO(s *model.JobSeeker) JobSeekerDTO {
	return JobSeekerDTO{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Location:       s.Location,
		PhoneNumber:    s.PhoneNumber,
		Role:           s.Role,
		Education:      nonNilList(s.Education),
		WorkExperience: nonNilList(s.WorkExperience),
		SavedJobs:      nonNilStrings(s.SavedJobs),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}

type EmployerDTO struct {
	ID                 string                   `json:"_id"`
	FirstName          string                   `json:"employerFirstName"`
	LastName           string                   `json:"employerLastName"`
	Email              string                   `json:"employerEmail"`
	Location           string                   `json:"employerLocation"`
	PhoneNumber        string                   `json:"employerPhoneNumber"`
	Role               string                   `json:"employerRole"`
	CompanyName        string                   `json:"employerCompanyName"`
	CompanyDescription string                   `json:"employerCompanyDescription"`
	CompanyIndustry    string                   `json:"employerCompanyIndustry"`
	Education          []map[string]interface{} `json:"employerEducation"`
	WorkExperience     []map[string]interface{} `json:"employerWorkExperience"`
	CreatedAt          string                   `json:"createdAt"`
	UpdatedAt          string                   `json:"updatedAt"`
}

func NewEmployerDTO(e *model.Employer) EmployerDTO {
	return EmployerDTO{
		ID:                 e.ID,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              e.Email,
		Location:           e.Location,
		PhoneNumber:        e.PhoneNumber,
		Role:               e.Role,
		CompanyName:        e.CompanyName,
		CompanyDescription: e.CompanyDescription,
		CompanyIndustry:    e.CompanyIndustry,
		Education:          nonNilList(e.Education),
		WorkExperience:     nonNilList(e.WorkExperience),
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          e.UpdatedAt.Format(time.RFC3339),
	}
}

func nonNilList(l model.JSONList) []map[string]interface{} {
	if l == nil {
		return []map[string]interface{}{}
	}
	return l
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
