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

type contactRepository struct {
	BaseRepository
}

func NewContactRepository(base BaseRepository) repository.ContactRepository {
	return &contactRepository{base}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.BusinessContact) error {
	contact.ID = uuid.New()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	// is_verified is write-protected and always starts false.
	contact.IsVerified = false

	query := `
		INSERT INTO business_contacts (
			id, business_id, contact, contact_type, is_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.BusinessID, contact.Contact,
		contact.ContactType, contact.IsVerified, contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.BusinessContact, error) {
	query := `
		SELECT id, business_id, contact, contact_type, is_verified, created_at, updated_at
		FROM business_contacts
		WHERE id = $1
	`
	var contact model.BusinessContact
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("contact")
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessContact, error) {
	query := `
		SELECT id, business_id, contact, contact_type, is_verified, created_at, updated_at
		FROM business_contacts
		WHERE business_id = $1
		ORDER BY created_at
	`
	contacts := []*model.BusinessContact{}
	if err := r.db.SelectContext(ctx, &contacts, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.BusinessContact) error {
	query := `
		UPDATE business_contacts
		SET contact = $1, contact_type = $2, updated_at = $3
		WHERE id = $4 AND business_id = $5
	`
	contact.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		contact.Contact, contact.ContactType, contact.UpdatedAt,
		contact.ID, contact.BusinessID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("contact")
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM business_contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("contact")
	}
	return nil
}
