// Package model defines domain entities for the application.
package model

import "time"

// Role is the account kind chosen at registration. It never changes afterwards.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleStudent, RoleCompany, RoleAdmin}

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// User is the account record keyed by the identity provider's subject.
type User struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Role           Role            `json:"role"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	StudentProfile *StudentProfile `json:"studentProfile"`
	CompanyProfile *CompanyProfile `json:"companyProfile"`
}

// StudentProfile extends a STUDENT user.
type StudentProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ResumeURL *string   `json:"resumeUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyProfile extends a COMPANY user and owns jobs.
type CompanyProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CompanyName string    `json:"companyName"`
	Description *string   `json:"description"`
	LogoURL     *string   `json:"logoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileFields is the role-specific part of a registration.
// Exactly one implementation matches each profile-bearing role.
type ProfileFields interface {
	profileRole() Role
}

// StudentFields seeds a StudentProfile at registration.
type StudentFields struct {
	FirstName string
	LastName  string
}

func (StudentFields) profileRole() Role { return RoleStudent }

// CompanyFields seeds a CompanyProfile at registration.
type CompanyFields struct {
	CompanyName string
}

func (CompanyFields) profileRole() Role { return RoleCompany }

// ProfileFieldsFor builds the registration payload for role.
// ADMIN accounts carry no profile and get nil.
func ProfileFieldsFor(role Role, firstName, lastName, companyName string) ProfileFields {
	switch role {
	case RoleStudent:
		return StudentFields{FirstName: firstName, LastName: lastName}
	case RoleCompany:
		return CompanyFields{CompanyName: companyName}
	default:
		return nil
	}
}

// MatchesRole reports whether fields belong to role. A nil payload matches only ADMIN.
func MatchesRole(fields ProfileFields, role Role) bool {
	if fields == nil {
		return role == RoleAdmin
	}
	return fields.profileRole() == role
}

// StudentProfilePatch lists the student profile fields a PATCH may change.
type StudentProfilePatch struct {
	FirstName *string
	LastName  *string
	ResumeURL Optional[string]
}

// CompanyProfilePatch lists the company profile fields a PATCH may change.
type CompanyProfilePatch struct {
	CompanyName *string
	Description Optional[string]
	LogoURL     Optional[string]
}
