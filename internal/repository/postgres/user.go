package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.EmailUser) error {
	query := `
		INSERT INTO email_users (
			id, first_name, last_name, email, password_hash, user_type,
			mobile, is_email_verified, is_mobile_verified, is_active,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, lower($4), $5, $6, $7, $8, $9, $10, $11, $12
		)
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.UserType,
		user.Mobile,
		user.IsEmailVerified,
		user.IsMobileVerified,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("email")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmailUser, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, user_type,
			mobile, is_email_verified, is_mobile_verified, mobile_verified_time,
			is_active, created_at, updated_at
		FROM email_users
		WHERE id = $1
	`
	var user model.EmailUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.EmailUser, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, user_type,
			mobile, is_email_verified, is_mobile_verified, mobile_verified_time,
			is_active, created_at, updated_at
		FROM email_users
		WHERE email = lower($1)
	`
	var user model.EmailUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.EmailUser) error {
	query := `
		UPDATE email_users
		SET first_name = $1, last_name = $2, mobile = $3,
			is_email_verified = $4, is_mobile_verified = $5,
			mobile_verified_time = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Mobile,
		user.IsEmailVerified,
		user.IsMobileVerified,
		user.MobileVerifiedTime,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("user")
	}
	return nil
}
