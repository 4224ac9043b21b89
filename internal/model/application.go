package model

import "time"

// ApplicationStatus is the review stage of an application.
// PENDING is initial; ACCEPTED and REJECTED are the usual end states, but any
// status may be set from any other.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "PENDING"
	StatusReviewing ApplicationStatus = "REVIEWING"
	StatusAccepted  ApplicationStatus = "ACCEPTED"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// ValidApplicationStatuses contains all valid status values.
var ValidApplicationStatuses = []ApplicationStatus{StatusPending, StatusReviewing, StatusAccepted, StatusRejected}

// IsValid checks if the status is valid.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewing, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a decision.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Application links one student profile to one job. (JobID, StudentID) is unique.
type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"jobId"`
	StudentID string            `json:"studentId"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`

	// OwnerUserID is the user owning the job's company. Never serialized.
	OwnerUserID string `json:"-"`

	Job     *ApplicationJob   `json:"job,omitempty"`
	Student *ApplicantSummary `json:"student,omitempty"`
}

// ApplicationJob is the job summary attached to application reads.
type ApplicationJob struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Type     JobType         `json:"type,omitempty"`
	Location *string         `json:"location,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
	Company  *CompanySummary `json:"company,omitempty"`
}

// ApplicantSummary is the student data a company sees on an application.
type ApplicantSummary struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	ResumeURL *string `json:"resumeUrl"`
	Email     string  `json:"email"`
}
