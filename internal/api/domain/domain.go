package domain

import (
	"errors"
)

// User types stored in the session
const (
	UserTypeJobSeeker = "jobSeeker"
	UserTypeEmployer  = "employer"
)

// Application statuses
const (
	ApplicationStatusApplied     = "applied"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusAccepted    = "accepted"
	ApplicationStatusRejected    = "rejected"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrAlreadyApplied = errors.New("already applied to this job")
	ErrDuplicateReqID = errors.New("job with this req id already exists")
	ErrInvalidStatus  = errors.New("invalid application status")
)

// IsValidUserType reports whether t is one of the known user types
func IsValidUserType(t string) bool {
	return t == UserTypeJobSeeker || t == UserTypeEmployer
}

// IsReviewStatus reports whether an employer may move an application to status
func IsReviewStatus(status string) bool {
	switch status {
	case ApplicationStatusUnderReview, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// CanWithdraw reports whether a job seeker may still withdraw an application
// in the given status. Decided applications stay on record.
func CanWithdraw(status string) bool {
	return status == ApplicationStatusApplied || status == ApplicationStatusUnderReview
}
