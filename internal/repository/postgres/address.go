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

type addressRepository struct {
	BaseRepository
}

func NewAddressRepository(base BaseRepository) repository.AddressRepository {
	return &addressRepository{base}
}

// lockBusiness serializes concurrent default/headquarters writes for
// one business on its row lock.
func lockBusiness(ctx context.Context, tx *sqlx.Tx, businessID uuid.UUID) error {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM businesses WHERE id = $1 FOR UPDATE`, businessID)
	if err != nil {
		if isNoRows(err) {
			return apperrors.Absent("business")
		}
		return fmt.Errorf("failed to lock business: %w", err)
	}
	return nil
}

func (r *addressRepository) Create(ctx context.Context, address *model.BusinessAddress) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, address.BusinessID); err != nil {
			return err
		}

		var existing int
		countQuery := `SELECT count(*) FROM business_addresses WHERE business_id = $1`
		if err := tx.GetContext(ctx, &existing, countQuery, address.BusinessID); err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}

		if existing == 0 && address.AddressType != model.AddressTypeHeadquarters {
			return apperrors.Precondition("address_type", "first address must be headquarters")
		}

		if address.AddressType == model.AddressTypeHeadquarters {
			var hqExists bool
			hqQuery := `
				SELECT EXISTS (
					SELECT 1 FROM business_addresses
					WHERE business_id = $1 AND address_type = 'headquarters'
				)
			`
			if err := tx.GetContext(ctx, &hqExists, hqQuery, address.BusinessID); err != nil {
				return fmt.Errorf("failed to check headquarters: %w", err)
			}
			if hqExists {
				return apperrors.AlreadyExists("headquarters")
			}
		}

		// The first address is the default no matter what was sent.
		if existing == 0 {
			address.IsDefault = true
		}

		address.ID = uuid.New()
		address.CreatedAt = time.Now()
		address.UpdatedAt = address.CreatedAt

		insertQuery := `
			INSERT INTO business_addresses (
				id, name, address, city, pincode, address_type, business_id,
				state_id, is_default, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			address.ID, address.Name, address.Address, address.City,
			address.Pincode, address.AddressType, address.BusinessID,
			address.StateID, address.IsDefault, address.CreatedAt, address.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}

		if address.IsDefault {
			return clearOtherDefaults(ctx, tx, "business_addresses", address.BusinessID, address.ID)
		}
		return nil
	})
}

func clearOtherDefaults(ctx context.Context, tx *sqlx.Tx, table string, businessID, keepID uuid.UUID) error {
	query := fmt.Sprintf(
		`UPDATE %s SET is_default = false, updated_at = $1 WHERE business_id = $2 AND id <> $3`,
		table,
	)
	if _, err := tx.ExecContext(ctx, query, time.Now(), businessID, keepID); err != nil {
		return fmt.Errorf("failed to clear other defaults: %w", err)
	}
	return nil
}

func (r *addressRepository) Get(ctx context.Context, id uuid.UUID) (*model.BusinessAddress, error) {
	query := `
		SELECT id, name, address, city, pincode, address_type, business_id,
			state_id, is_default, created_at, updated_at
		FROM business_addresses
		WHERE id = $1
	`
	var address model.BusinessAddress
	if err := r.db.GetContext(ctx, &address, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("address")
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return &address, nil
}

func (r *addressRepository) ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessAddress, error) {
	query := `
		SELECT id, name, address, city, pincode, address_type, business_id,
			state_id, is_default, created_at, updated_at
		FROM business_addresses
		WHERE business_id = $1
		ORDER BY address_type, created_at
	`
	addresses := []*model.BusinessAddress{}
	if err := r.db.SelectContext(ctx, &addresses, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *model.BusinessAddress) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, address.BusinessID); err != nil {
			return err
		}

		query := `
			UPDATE business_addresses
			SET name = $1, address = $2, city = $3, pincode = $4,
				state_id = $5, is_default = $6, updated_at = $7
			WHERE id = $8 AND business_id = $9
		`
		address.UpdatedAt = time.Now()

		result, err := tx.ExecContext(ctx, query,
			address.Name, address.Address, address.City, address.Pincode,
			address.StateID, address.IsDefault, address.UpdatedAt,
			address.ID, address.BusinessID,
		)
		if err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Absent("address")
		}

		if address.IsDefault {
			return clearOtherDefaults(ctx, tx, "business_addresses", address.BusinessID, address.ID)
		}
		return nil
	})
}

func (r *addressRepository) ToggleDefault(ctx context.Context, businessID, addressID uuid.UUID) (*model.BusinessAddress, error) {
	var address model.BusinessAddress

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, businessID); err != nil {
			return err
		}

		query := `
			UPDATE business_addresses
			SET is_default = NOT is_default, updated_at = $1
			WHERE id = $2 AND business_id = $3
			RETURNING id, name, address, city, pincode, address_type,
				business_id, state_id, is_default, created_at, updated_at
		`
		if err := tx.GetContext(ctx, &address, query, time.Now(), addressID, businessID); err != nil {
			if isNoRows(err) {
				return apperrors.Absent("address")
			}
			return fmt.Errorf("failed to toggle address default: %w", err)
		}

		return clearOtherDefaults(ctx, tx, "business_addresses", businessID, addressID)
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}
