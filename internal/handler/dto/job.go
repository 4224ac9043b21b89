package dto

import (
	"github.com/campusjobs/campusjobs/internal/model"
)

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=10000"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Type        string  `json:"type" validate:"required,oneof=INTERNSHIP FULL_TIME PART_TIME"`
}

// UpdateJobRequest is the body of PATCH /jobs/{id}. Absent fields are left
// unchanged; a null location clears it.
type UpdateJobRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,min=1,max=10000"`
	Location    model.Optional[string] `json:"location" validate:"omitempty,max=200"`
	Type        *string                `json:"type" validate:"omitempty,oneof=INTERNSHIP FULL_TIME PART_TIME"`
	IsActive    *bool                  `json:"isActive"`
}

// ToPatch converts the request to a job patch.
func (r UpdateJobRequest) ToPatch() model.JobPatch {
	patch := model.JobPatch{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		IsActive:    r.IsActive,
	}
	if r.Type != nil {
		t := model.JobType(*r.Type)
		patch.Type = &t
	}
	return patch
}
