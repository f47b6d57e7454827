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

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

func (r *accountRepository) Create(ctx context.Context, account *model.BusinessAccount) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, account.BusinessID); err != nil {
			return err
		}

		account.ID = uuid.New()
		account.CreatedAt = time.Now()
		account.UpdatedAt = account.CreatedAt

		query := `
			INSERT INTO business_accounts (
				id, account_name, account_number, bank_name, ifsc_code,
				account_type, business_id, is_default, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, query,
			account.ID, account.AccountName, account.AccountNumber,
			account.BankName, account.IFSCCode, account.AccountType,
			account.BusinessID, account.IsDefault, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		if account.IsDefault {
			return clearOtherDefaults(ctx, tx, "business_accounts", account.BusinessID, account.ID)
		}
		return nil
	})
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.BusinessAccount, error) {
	query := `
		SELECT id, account_name, account_number, bank_name, ifsc_code,
			account_type, business_id, is_default, created_at, updated_at
		FROM business_accounts
		WHERE id = $1
	`
	var account model.BusinessAccount
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("account")
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessAccount, error) {
	query := `
		SELECT id, account_name, account_number, bank_name, ifsc_code,
			account_type, business_id, is_default, created_at, updated_at
		FROM business_accounts
		WHERE business_id = $1
		ORDER BY created_at
	`
	accounts := []*model.BusinessAccount{}
	if err := r.db.SelectContext(ctx, &accounts, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.BusinessAccount) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, account.BusinessID); err != nil {
			return err
		}

		query := `
			UPDATE business_accounts
			SET account_name = $1, account_number = $2, bank_name = $3,
				ifsc_code = $4, account_type = $5, is_default = $6, updated_at = $7
			WHERE id = $8 AND business_id = $9
		`
		account.UpdatedAt = time.Now()

		result, err := tx.ExecContext(ctx, query,
			account.AccountName, account.AccountNumber, account.BankName,
			account.IFSCCode, account.AccountType, account.IsDefault,
			account.UpdatedAt, account.ID, account.BusinessID,
		)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Absent("account")
		}

		if account.IsDefault {
			return clearOtherDefaults(ctx, tx, "business_accounts", account.BusinessID, account.ID)
		}
		return nil
	})
}

func (r *accountRepository) ToggleDefault(ctx context.Context, businessID, accountID uuid.UUID) (*model.BusinessAccount, error) {
	var account model.BusinessAccount

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockBusiness(ctx, tx, businessID); err != nil {
			return err
		}

		query := `
			UPDATE business_accounts
			SET is_default = NOT is_default, updated_at = $1
			WHERE id = $2 AND business_id = $3
			RETURNING id, account_name, account_number, bank_name, ifsc_code,
				account_type, business_id, is_default, created_at, updated_at
		`
		if err := tx.GetContext(ctx, &account, query, time.Now(), accountID, businessID); err != nil {
			if isNoRows(err) {
				return apperrors.Absent("account")
			}
			return fmt.Errorf("failed to toggle account default: %w", err)
		}

		return clearOtherDefaults(ctx, tx, "business_accounts", businessID, accountID)
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
