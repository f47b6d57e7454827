package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryucoder/crown-backend/internal/model"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectBusinessLock(mock sqlmock.Sqlmock, businessID uuid.UUID) {
	mock.ExpectQuery("SELECT id FROM businesses").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(businessID.String()))
}

var addressColumns = []string{
	"id", "name", "address", "city", "pincode", "address_type",
	"business_id", "state_id", "is_default", "created_at", "updated_at",
}

func TestCreateAddressFirstMustBeHeadquarters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.BusinessAddress{
		BusinessID:  businessID,
		AddressType: model.AddressTypeBranch,
	})
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAddressRejectsSecondHeadquarters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.BusinessAddress{
		BusinessID:  businessID,
		AddressType: model.AddressTypeHeadquarters,
	})
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO business_addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET is_default = false").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Submitted without the default flag; the first address gets it
	// anyway.
	address := &model.BusinessAddress{
		BusinessID:  businessID,
		AddressType: model.AddressTypeHeadquarters,
		IsDefault:   false,
	}
	require.NoError(t, repo.Create(context.Background(), address))
	assert.True(t, address.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAddressLaterNonDefaultKeepsSiblings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO business_addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	address := &model.BusinessAddress{
		BusinessID:  businessID,
		AddressType: model.AddressTypeBranch,
		IsDefault:   false,
	}
	require.NoError(t, repo.Create(context.Background(), address))
	assert.False(t, address.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleDefaultAddressClearsSiblings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()
	addressID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SET is_default = NOT is_default").
		WillReturnRows(sqlmock.NewRows(addressColumns).AddRow(
			addressID.String(), "Main branch", "12 MG Road", "Pune", "411001",
			"branch", businessID.String(), uuid.New().String(), true, now, now,
		))
	mock.ExpectExec("SET is_default = false").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	address, err := repo.ToggleDefault(context.Background(), businessID, addressID)
	require.NoError(t, err)
	assert.True(t, address.IsDefault)
	assert.Equal(t, addressID, address.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleDefaultAddressUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAddressRepository(NewBaseRepository(db))
	businessID := uuid.New()

	mock.ExpectBegin()
	expectBusinessLock(mock, businessID)
	mock.ExpectQuery("SET is_default = NOT is_default").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ToggleDefault(context.Background(), businessID, uuid.New())
	assert.Equal(t, apperrors.CodeAbsent, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
