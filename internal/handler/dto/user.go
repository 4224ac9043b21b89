package dto

import (
	"github.com/campusjobs/campusjobs/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
// Email may be omitted; the verified token's email is used instead.
type RegisterRequest struct {
	Email       string `json:"email" validate:"omitempty,email,max=320"`
	Role        string `json:"role" validate:"required,oneof=STUDENT COMPANY ADMIN"`
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	CompanyName string `json:"companyName" validate:"max=200"`
}

// UpdateStudentProfileRequest is the body of PATCH /users/profile/student.
// A null resumeUrl clears it.
type UpdateStudentProfileRequest struct {
	FirstName *string                `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string                `json:"lastName" validate:"omitempty,max=100"`
	ResumeURL model.Optional[string] `json:"resumeUrl" validate:"omitempty,url,max=2048"`
}

// ToPatch converts the request to a profile patch.
func (r UpdateStudentProfileRequest) ToPatch() model.StudentProfilePatch {
	return model.StudentProfilePatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		ResumeURL: r.ResumeURL,
	}
}

// UpdateCompanyProfileRequest is the body of PATCH /users/profile/company.
// A null description or logoUrl clears it.
type UpdateCompanyProfileRequest struct {
	CompanyName *string                `json:"companyName" validate:"omitempty,max=200"`
	Description model.Optional[string] `json:"description" validate:"omitempty,max=5000"`
	LogoURL     model.Optional[string] `json:"logoUrl" validate:"omitempty,url,max=2048"`
}

// ToPatch converts the request to a profile patch.
func (r UpdateCompanyProfileRequest) ToPatch() model.CompanyProfilePatch {
	return model.CompanyProfilePatch{
		CompanyName: r.CompanyName,
		Description: r.Description,
		LogoURL:     r.LogoURL,
	}
}
