package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/campusjobs/campusjobs/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

// CreateUser inserts a user and, in the same transaction, the profile that
// matches fields. ADMIN users get no profile.
func (r *Repository) CreateUser(ctx context.Context, user *model.User, fields model.ProfileFields) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.StudentProfile = nil
	user.CompanyProfile = nil

	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.Email, user.Role, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "users_pkey") {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		switch f := fields.(type) {
		case model.StudentFields:
			profile := &model.StudentProfile{
				ID:        ulid.Make().String(),
				UserID:    user.ID,
				FirstName: f.FirstName,
				LastName:  f.LastName,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO student_profiles (id, user_id, first_name, last_name, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, profile.ID, profile.UserID, profile.FirstName, profile.LastName, profile.CreatedAt, profile.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create student profile: %w", err)
			}
			user.StudentProfile = profile

		case model.CompanyFields:
			profile := &model.CompanyProfile{
				ID:          ulid.Make().String(),
				UserID:      user.ID,
				CompanyName: f.CompanyName,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO company_profiles (id, user_id, company_name, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			`, profile.ID, profile.UserID, profile.CompanyName, profile.CreatedAt, profile.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create company profile: %w", err)
			}
			user.CompanyProfile = profile
		}

		return nil
	})
}

// GetUserByID retrieves a user with whichever profile it has.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT u.id, u.email, u.role, u.created_at, u.updated_at,
		       sp.id, sp.first_name, sp.last_name, sp.resume_url, sp.created_at, sp.updated_at,
		       cp.id, cp.company_name, cp.description, cp.logo_url, cp.created_at, cp.updated_at
		FROM users u
		LEFT JOIN student_profiles sp ON sp.user_id = u.id
		LEFT JOIN company_profiles cp ON cp.user_id = u.id
		WHERE u.id = $1
	`

	var (
		user model.User

		spID, spFirst, spLast *string
		spResume              *string
		spCreated, spUpdated  *time.Time
		cpID, cpName          *string
		cpDescription, cpLogo *string
		cpCreated, cpUpdated  *time.Time
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt,
		&spID, &spFirst, &spLast, &spResume, &spCreated, &spUpdated,
		&cpID, &cpName, &cpDescription, &cpLogo, &cpCreated, &cpUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	if spID != nil {
		user.StudentProfile = &model.StudentProfile{
			ID:        *spID,
			UserID:    user.ID,
			FirstName: *spFirst,
			LastName:  *spLast,
			ResumeURL: spResume,
			CreatedAt: *spCreated,
			UpdatedAt: *spUpdated,
		}
	}
	if cpID != nil {
		user.CompanyProfile = &model.CompanyProfile{
			ID:          *cpID,
			UserID:      user.ID,
			CompanyName: *cpName,
			Description: cpDescription,
			LogoURL:     cpLogo,
			CreatedAt:   *cpCreated,
			UpdatedAt:   *cpUpdated,
		}
	}

	return &user, nil
}

// GetUserRole returns only the role of a user. Hot path for the role guard.
func (r *Repository) GetUserRole(ctx context.Context, id string) (model.Role, error) {
	var role model.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user role: %w", err)
	}
	return role, nil
}

// GetStudentProfileByUserID retrieves the student profile owned by a user.
func (r *Repository) GetStudentProfileByUserID(ctx context.Context, userID string) (*model.StudentProfile, error) {
	query := `
		SELECT id, user_id, first_name, last_name, resume_url, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`
	return scanStudentProfile(r.pool.QueryRow(ctx, query, userID))
}

// GetCompanyProfileByUserID retrieves the company profile owned by a user.
func (r *Repository) GetCompanyProfileByUserID(ctx context.Context, userID string) (*model.CompanyProfile, error) {
	query := `
		SELECT id, user_id, company_name, description, logo_url, created_at, updated_at
		FROM company_profiles
		WHERE user_id = $1
	`
	return scanCompanyProfile(r.pool.QueryRow(ctx, query, userID))
}

// UpdateStudentProfile applies a partial update and returns the stored profile.
// Nil pointers keep the column; a present Optional overwrites it, NULL included.
func (r *Repository) UpdateStudentProfile(ctx context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    resume_url = CASE WHEN $4::boolean THEN $5 ELSE resume_url END,
		    updated_at = $6
		WHERE user_id = $1
		RETURNING id, user_id, first_name, last_name, resume_url, created_at, updated_at
	`
	return scanStudentProfile(r.pool.QueryRow(ctx, query,
		userID, patch.FirstName, patch.LastName,
		patch.ResumeURL.Present, patch.ResumeURL.Value,
		time.Now().UTC(),
	))
}

// UpdateCompanyProfile applies a partial update and returns the stored profile.
// Nil pointers keep the column; a present Optional overwrites it, NULL included.
func (r *Repository) UpdateCompanyProfile(ctx context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error) {
	query := `
		UPDATE company_profiles
		SET company_name = COALESCE($2, company_name),
		    description  = CASE WHEN $3::boolean THEN $4 ELSE description END,
		    logo_url     = CASE WHEN $5::boolean THEN $6 ELSE logo_url END,
		    updated_at   = $7
		WHERE user_id = $1
		RETURNING id, user_id, company_name, description, logo_url, created_at, updated_at
	`
	return scanCompanyProfile(r.pool.QueryRow(ctx, query,
		userID, patch.CompanyName,
		patch.Description.Present, patch.Description.Value,
		patch.LogoURL.Present, patch.LogoURL.Value,
		time.Now().UTC(),
	))
}

func scanStudentProfile(row pgx.Row) (*model.StudentProfile, error) {
	var p model.StudentProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.ResumeURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan student profile: %w", err)
	}
	return &p, nil
}

func scanCompanyProfile(row pgx.Row) (*model.CompanyProfile, error) {
	var p model.CompanyProfile
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.Description, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan company profile: %w", err)
	}
	return &p, nil
}
