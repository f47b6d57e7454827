package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) CreatePasswordToken(ctx context.Context, token *model.PasswordToken) error {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt

	query := `
		INSERT INTO password_tokens (
			id, email_user_id, token, category, expiry, is_used, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.EmailUserID, token.Token, token.Category,
		token.Expiry, token.IsUsed, token.CreatedAt, token.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("token")
		}
		return fmt.Errorf("failed to create password token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetPasswordToken(ctx context.Context, userID uuid.UUID, token uuid.UUID, category model.TokenCategory) (*model.PasswordToken, error) {
	query := `
		SELECT id, email_user_id, token, category, expiry, is_used, used_time,
			created_at, updated_at
		FROM password_tokens
		WHERE email_user_id = $1 AND token = $2 AND category = $3
	`
	var row model.PasswordToken
	if err := r.db.GetContext(ctx, &row, query, userID, token, category); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("token")
		}
		return nil, fmt.Errorf("failed to get password token: %w", err)
	}
	return &row, nil
}

func (r *tokenRepository) HasUnexpiredPasswordToken(ctx context.Context, userID uuid.UUID, category model.TokenCategory, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM password_tokens
			WHERE email_user_id = $1 AND category = $2
				AND NOT is_used AND expiry > $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, category, now); err != nil {
		return false, fmt.Errorf("failed to check pending tokens: %w", err)
	}
	return exists, nil
}

func (r *tokenRepository) PasswordTokenValueExists(ctx context.Context, userID uuid.UUID, token uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM password_tokens
			WHERE email_user_id = $1 AND token = $2
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, token); err != nil {
		return false, fmt.Errorf("failed to check token value: %w", err)
	}
	return exists, nil
}

func (r *tokenRepository) ConsumeForEmailVerification(ctx context.Context, tokenID, userID uuid.UUID, usedAt time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := consumePasswordToken(ctx, tx, tokenID, usedAt); err != nil {
			return err
		}

		query := `UPDATE email_users SET is_email_verified = true, updated_at = $1 WHERE id = $2`
		result, err := tx.ExecContext(ctx, query, usedAt, userID)
		if err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Absent("user")
		}
		return nil
	})
}

func (r *tokenRepository) ConsumeForPasswordReset(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string, usedAt time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := consumePasswordToken(ctx, tx, tokenID, usedAt); err != nil {
			return err
		}

		query := `UPDATE email_users SET password_hash = $1, updated_at = $2 WHERE id = $3`
		result, err := tx.ExecContext(ctx, query, passwordHash, usedAt, userID)
		if err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Absent("user")
		}
		return nil
	})
}

func consumePasswordToken(ctx context.Context, tx *sqlx.Tx, tokenID uuid.UUID, usedAt time.Time) error {
	query := `
		UPDATE password_tokens
		SET is_used = true, used_time = $1, updated_at = $1
		WHERE id = $2 AND NOT is_used
	`
	result, err := tx.ExecContext(ctx, query, usedAt, tokenID)
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Used("token")
	}
	return nil
}

func (r *tokenRepository) CreateMobileToken(ctx context.Context, token *model.MobileToken) error {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt

	query := `
		INSERT INTO mobile_tokens (
			id, mobile, token, expiry, is_used, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.Mobile, token.Token, token.Expiry,
		token.IsUsed, token.CreatedAt, token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create mobile token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetMobileToken(ctx context.Context, mobile int64, token int) (*model.MobileToken, error) {
	query := `
		SELECT id, mobile, token, expiry, is_used, used_time, created_at, updated_at
		FROM mobile_tokens
		WHERE mobile = $1 AND token = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var row model.MobileToken
	if err := r.db.GetContext(ctx, &row, query, mobile, token); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("token")
		}
		return nil, fmt.Errorf("failed to get mobile token: %w", err)
	}
	return &row, nil
}

func (r *tokenRepository) HasUnexpiredMobileToken(ctx context.Context, mobile int64, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mobile_tokens
			WHERE mobile = $1 AND NOT is_used AND expiry > $2
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, mobile, now); err != nil {
		return false, fmt.Errorf("failed to check pending mobile tokens: %w", err)
	}
	return exists, nil
}

func (r *tokenRepository) ConsumeForMobileVerification(ctx context.Context, tokenID uuid.UUID, mobile int64, usedAt time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE mobile_tokens
			SET is_used = true, used_time = $1, updated_at = $1
			WHERE id = $2 AND NOT is_used
		`
		result, err := tx.ExecContext(ctx, query, usedAt, tokenID)
		if err != nil {
			return fmt.Errorf("failed to consume mobile token: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Used("token")
		}

		userQuery := `
			UPDATE email_users
			SET is_mobile_verified = true, mobile_verified_time = $1, updated_at = $1
			WHERE mobile = $2
		`
		if _, err := tx.ExecContext(ctx, userQuery, usedAt, mobile); err != nil {
			return fmt.Errorf("failed to mark mobile verified: %w", err)
		}
		return nil
	})
}
