package model

import (
	"strconv"
	"time"
)

// JobType classifies a posting.
type JobType string

const (
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
)

// IsValid checks if the job type is valid.
func (t JobType) IsValid() bool {
	return t == JobTypeInternship || t == JobTypeFullTime || t == JobTypePartTime
}

// Job is a posting owned by a company profile.
type Job struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    *string   `json:"location"`
	Type        JobType   `json:"type"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// OwnerUserID is the user behind CompanyID. Loaded for ownership checks, never serialized.
	OwnerUserID string `json:"-"`

	Company          *CompanySummary `json:"company,omitempty"`
	ApplicationCount *int            `json:"applicationCount,omitempty"`
}

// OwnedBy reports whether userID controls this job.
func (j *Job) OwnedBy(userID string) bool {
	return userID != "" && j.OwnerUserID == userID
}

// CompanySummary is the company data attached to job reads.
// Description is only populated on single-job detail reads.
type CompanySummary struct {
	ID          string  `json:"id"`
	CompanyName string  `json:"companyName"`
	LogoURL     *string `json:"logoUrl,omitempty"`
	Description *string `json:"description,omitempty"`
}

// JobPatch lists the job fields a PATCH may change.
type JobPatch struct {
	Title       *string
	Description *string
	Location    Optional[string]
	Type        *JobType
	IsActive    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.Location.Present && p.Type == nil && p.IsActive == nil
}

// Apply copies the supplied fields onto job.
func (p JobPatch) Apply(job *Job) {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	job.Location = p.Location.Apply(job.Location)
	if p.Type != nil {
		job.Type = *p.Type
	}
	if p.IsActive != nil {
		job.IsActive = *p.IsActive
	}
}

// CachedJob is the job detail stored in Redis.
// Uses string types for Redis hash compatibility.
type CachedJob struct {
	CompanyID          string `redis:"company_id"`
	OwnerUserID        string `redis:"owner_user_id"`
	Title              string `redis:"title"`
	Description        string `redis:"description"`
	Location           string `redis:"location"`     // empty when unset
	HasLocation        string `redis:"has_location"` // "1" or "0"
	Type               string `redis:"type"`
	IsActive           string `redis:"is_active"`  // "1" or "0"
	CreatedAt          string `redis:"created_at"` // Unix nanoseconds
	UpdatedAt          string `redis:"updated_at"` // Unix nanoseconds
	CompanyName        string `redis:"company_name"`
	CompanyLogoURL     string `redis:"company_logo_url"`
	CompanyDescription string `redis:"company_description"`
	ApplicationCount   string `redis:"application_count"`
}

// ToCachedJob converts a fully loaded job to its cache form.
func (j *Job) ToCachedJob() *CachedJob {
	cached := &CachedJob{
		CompanyID:   j.CompanyID,
		OwnerUserID: j.OwnerUserID,
		Title:       j.Title,
		Description: j.Description,
		HasLocation: boolToString(j.Location != nil),
		Type:        string(j.Type),
		IsActive:    boolToString(j.IsActive),
		CreatedAt:   strconv.FormatInt(j.CreatedAt.UnixNano(), 10),
		UpdatedAt:   strconv.FormatInt(j.UpdatedAt.UnixNano(), 10),
	}
	if j.Location != nil {
		cached.Location = *j.Location
	}
	if j.Company != nil {
		cached.CompanyName = j.Company.CompanyName
		cached.CompanyLogoURL = derefString(j.Company.LogoURL)
		cached.CompanyDescription = derefString(j.Company.Description)
	}
	if j.ApplicationCount != nil {
		cached.ApplicationCount = strconv.Itoa(*j.ApplicationCount)
	}
	return cached
}

// ToJob converts the cache form back into a job with company detail attached.
func (c *CachedJob) ToJob(id string) *Job {
	job := &Job{
		ID:          id,
		CompanyID:   c.CompanyID,
		OwnerUserID: c.OwnerUserID,
		Title:       c.Title,
		Description: c.Description,
		Type:        JobType(c.Type),
		IsActive:    c.IsActive == "1",
		Company: &CompanySummary{
			ID:          c.CompanyID,
			CompanyName: c.CompanyName,
			LogoURL:     optionalString(c.CompanyLogoURL),
			Description: optionalString(c.CompanyDescription),
		},
	}
	if c.HasLocation == "1" {
		location := c.Location
		job.Location = &location
	}
	if ns, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
		job.CreatedAt = time.Unix(0, ns).UTC()
	}
	if ns, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil {
		job.UpdatedAt = time.Unix(0, ns).UTC()
	}
	if n, err := strconv.Atoi(c.ApplicationCount); err == nil {
		job.ApplicationCount = &n
	}
	return job
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
