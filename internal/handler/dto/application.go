package dto

// CreateApplicationRequest is the body of POST /applications.
type CreateApplicationRequest struct {
	JobID string `json:"jobId" validate:"required,max=64"`
}

// UpdateApplicationStatusRequest is the body of PATCH /applications/{id}/status.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING REVIEWING ACCEPTED REJECTED"`
}
