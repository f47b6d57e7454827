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

type connectRepository struct {
	BaseRepository
}

func NewConnectRepository(base BaseRepository) repository.ConnectRepository {
	return &connectRepository{base}
}

func (r *connectRepository) Get(ctx context.Context, id uuid.UUID) (*model.BusinessConnect, error) {
	query := `
		SELECT id, dentist_id, laboratory_id, is_active, created_at, updated_at
		FROM business_connects
		WHERE id = $1
	`
	var connect model.BusinessConnect
	if err := r.db.GetContext(ctx, &connect, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("connect")
		}
		return nil, fmt.Errorf("failed to get connect: %w", err)
	}
	return &connect, nil
}

func (r *connectRepository) GetByPair(ctx context.Context, dentistID, laboratoryID uuid.UUID) (*model.BusinessConnect, error) {
	query := `
		SELECT id, dentist_id, laboratory_id, is_active, created_at, updated_at
		FROM business_connects
		WHERE dentist_id = $1 AND laboratory_id = $2
	`
	var connect model.BusinessConnect
	if err := r.db.GetContext(ctx, &connect, query, dentistID, laboratoryID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("connect")
		}
		return nil, fmt.Errorf("failed to get connect by pair: %w", err)
	}
	return &connect, nil
}

func (r *connectRepository) Create(ctx context.Context, connect *model.BusinessConnect) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		checkQuery := `
			SELECT EXISTS (
				SELECT 1 FROM business_connects
				WHERE dentist_id = $1 AND laboratory_id = $2
			)
		`
		if err := tx.GetContext(ctx, &exists, checkQuery, connect.DentistID, connect.LaboratoryID); err != nil {
			return fmt.Errorf("failed to check connect pair: %w", err)
		}
		if exists {
			return apperrors.AlreadyExists("connect")
		}

		connect.ID = uuid.New()
		connect.CreatedAt = time.Now()
		connect.UpdatedAt = connect.CreatedAt

		insertQuery := `
			INSERT INTO business_connects (
				id, dentist_id, laboratory_id, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			connect.ID, connect.DentistID, connect.LaboratoryID,
			connect.IsActive, connect.CreatedAt, connect.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("connect")
			}
			return fmt.Errorf("failed to create connect: %w", err)
		}
		return nil
	})
}

func (r *connectRepository) Toggle(ctx context.Context, id uuid.UUID) (*model.BusinessConnect, error) {
	query := `
		UPDATE business_connects
		SET is_active = NOT is_active, updated_at = $1
		WHERE id = $2
		RETURNING id, dentist_id, laboratory_id, is_active, created_at, updated_at
	`
	var connect model.BusinessConnect
	if err := r.db.GetContext(ctx, &connect, query, time.Now(), id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("connect")
		}
		return nil, fmt.Errorf("failed to toggle connect: %w", err)
	}
	return &connect, nil
}
