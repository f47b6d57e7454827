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

type businessRepository struct {
	BaseRepository
}

func NewBusinessRepository(base BaseRepository) repository.BusinessRepository {
	return &businessRepository{base}
}

const businessColumns = `
	id, name, gstin, category, website, is_active, is_claimed,
	referral_id, created_at, updated_at
`

func (r *businessRepository) CreateWithOwner(ctx context.Context, business *model.Business, owner *model.EmailUser, connect *model.BusinessConnect) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		if owner.ID == uuid.Nil {
			owner.ID = uuid.New()
		}
		owner.CreatedAt = now
		owner.UpdatedAt = now

		userQuery := `
			INSERT INTO email_users (
				id, first_name, last_name, email, password_hash, user_type,
				mobile, is_email_verified, is_mobile_verified, is_active,
				created_at, updated_at
			) VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, userQuery,
			owner.ID, owner.FirstName, owner.LastName, owner.Email,
			owner.PasswordHash, owner.UserType, owner.Mobile,
			owner.IsEmailVerified, owner.IsMobileVerified, owner.IsActive,
			owner.CreatedAt, owner.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("email")
			}
			return fmt.Errorf("failed to create owner: %w", err)
		}

		if business.ID == uuid.Nil {
			business.ID = uuid.New()
		}
		business.CreatedAt = now
		business.UpdatedAt = now

		businessQuery := `
			INSERT INTO businesses (
				id, name, gstin, category, website, is_active, is_claimed,
				referral_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = tx.ExecContext(ctx, businessQuery,
			business.ID, business.Name, business.GSTIN, business.Category,
			business.Website, business.IsActive, business.IsClaimed,
			business.ReferralID, business.CreatedAt, business.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create business: %w", err)
		}

		ownerQuery := `
			INSERT INTO business_owners (
				id, business_id, owner_id, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, true, $4, $5)
		`
		_, err = tx.ExecContext(ctx, ownerQuery, uuid.New(), business.ID, owner.ID, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("owner")
			}
			return fmt.Errorf("failed to create ownership link: %w", err)
		}

		if connect != nil {
			if connect.ID == uuid.Nil {
				connect.ID = uuid.New()
			}
			connect.CreatedAt = now
			connect.UpdatedAt = now

			connectQuery := `
				INSERT INTO business_connects (
					id, dentist_id, laboratory_id, is_active, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6)
			`
			_, err = tx.ExecContext(ctx, connectQuery,
				connect.ID, connect.DentistID, connect.LaboratoryID,
				connect.IsActive, connect.CreatedAt, connect.UpdatedAt,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return apperrors.AlreadyExists("connect")
				}
				return fmt.Errorf("failed to create connect: %w", err)
			}
		}

		return nil
	})
}

func (r *businessRepository) Get(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	var business model.Business
	if err := r.db.GetContext(ctx, &business, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("business")
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) GetWithRelations(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	business, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contactsQuery := `
		SELECT id, business_id, contact, contact_type, is_verified, created_at, updated_at
		FROM business_contacts WHERE business_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &business.Contacts, contactsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	addressesQuery := `
		SELECT id, name, address, city, pincode, address_type, business_id,
			state_id, is_default, created_at, updated_at
		FROM business_addresses WHERE business_id = $1 ORDER BY address_type, created_at
	`
	if err := r.db.SelectContext(ctx, &business.Addresses, addressesQuery, id); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	accountsQuery := `
		SELECT id, account_name, account_number, bank_name, ifsc_code,
			account_type, business_id, is_default, created_at, updated_at
		FROM business_accounts WHERE business_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &business.Accounts, accountsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return business, nil
}

func (r *businessRepository) GetForUser(ctx context.Context, userID uuid.UUID) (*model.Business, error) {
	query := `
		SELECT b.id, b.name, b.gstin, b.category, b.website, b.is_active,
			b.is_claimed, b.referral_id, b.created_at, b.updated_at
		FROM businesses b
		LEFT JOIN business_owners bo ON bo.business_id = b.id AND bo.is_active
		LEFT JOIN business_employees be ON be.business_id = b.id
		WHERE bo.owner_id = $1 OR be.employee_id = $1
		LIMIT 1
	`
	var business model.Business
	if err := r.db.GetContext(ctx, &business, query, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("business")
		}
		return nil, fmt.Errorf("failed to get business for user: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) GetOwnerID(ctx context.Context, businessID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT owner_id FROM business_owners
		WHERE business_id = $1 AND is_active
		ORDER BY created_at
		LIMIT 1
	`
	var ownerID uuid.UUID
	if err := r.db.GetContext(ctx, &ownerID, query, businessID); err != nil {
		if isNoRows(err) {
			return uuid.Nil, apperrors.Absent("owner")
		}
		return uuid.Nil, fmt.Errorf("failed to get business owner: %w", err)
	}
	return ownerID, nil
}

func (r *businessRepository) Update(ctx context.Context, business *model.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, gstin = $2, website = $3, is_active = $4,
			is_claimed = $5, updated_at = $6
		WHERE id = $7
	`
	business.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		business.Name, business.GSTIN, business.Website,
		business.IsActive, business.IsClaimed, business.UpdatedAt,
		business.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("business")
	}
	return nil
}

func (r *businessRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE businesses SET is_active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate business: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("business")
	}
	return nil
}

func (r *businessRepository) ListExcept(ctx context.Context, businessID uuid.UUID, p model.Pagination) ([]*model.Business, int, error) {
	countQuery := `SELECT count(*) FROM businesses WHERE id <> $1 AND is_active`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, businessID); err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE id <> $1 AND is_active
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	businesses := []*model.Business{}
	if err := r.db.SelectContext(ctx, &businesses, query, businessID, p.PageSize, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	return businesses, total, nil
}

func (r *businessRepository) ListConnected(ctx context.Context, businessID uuid.UUID, p model.Pagination) ([]*model.Business, int, error) {
	countQuery := `
		SELECT count(*)
		FROM businesses b
		JOIN business_connects bc
			ON b.id = CASE WHEN bc.dentist_id = $1 THEN bc.laboratory_id ELSE bc.dentist_id END
		WHERE (bc.dentist_id = $1 OR bc.laboratory_id = $1) AND bc.is_active
	`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, businessID); err != nil {
		return nil, 0, fmt.Errorf("failed to count connected businesses: %w", err)
	}

	query := `
		SELECT b.id, b.name, b.gstin, b.category, b.website, b.is_active,
			b.is_claimed, b.referral_id, b.created_at, b.updated_at
		FROM businesses b
		JOIN business_connects bc
			ON b.id = CASE WHEN bc.dentist_id = $1 THEN bc.laboratory_id ELSE bc.dentist_id END
		WHERE (bc.dentist_id = $1 OR bc.laboratory_id = $1) AND bc.is_active
		ORDER BY bc.created_at DESC
		LIMIT $2 OFFSET $3
	`
	businesses := []*model.Business{}
	if err := r.db.SelectContext(ctx, &businesses, query, businessID, p.PageSize, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list connected businesses: %w", err)
	}
	return businesses, total, nil
}

func (r *businessRepository) CreateEmployee(ctx context.Context, employee *model.EmailUser, link *model.BusinessEmployee) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		if employee.ID == uuid.Nil {
			employee.ID = uuid.New()
		}
		employee.CreatedAt = now
		employee.UpdatedAt = now

		userQuery := `
			INSERT INTO email_users (
				id, first_name, last_name, email, password_hash, user_type,
				mobile, is_email_verified, is_mobile_verified, is_active,
				created_at, updated_at
			) VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, userQuery,
			employee.ID, employee.FirstName, employee.LastName, employee.Email,
			employee.PasswordHash, employee.UserType, employee.Mobile,
			employee.IsEmailVerified, employee.IsMobileVerified, employee.IsActive,
			employee.CreatedAt, employee.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("email")
			}
			return fmt.Errorf("failed to create employee user: %w", err)
		}

		link.ID = uuid.New()
		link.EmployeeID = employee.ID
		link.CreatedAt = now
		link.UpdatedAt = now

		linkQuery := `
			INSERT INTO business_employees (
				id, business_id, employee_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5)
		`
		_, err = tx.ExecContext(ctx, linkQuery,
			link.ID, link.BusinessID, link.EmployeeID, link.CreatedAt, link.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("employee")
			}
			return fmt.Errorf("failed to create employment link: %w", err)
		}

		return nil
	})
}
