package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles email user rows.
	UserRepository interface {
		Create(ctx context.Context, user *model.EmailUser) error
		Get(ctx context.Context, id uuid.UUID) (*model.EmailUser, error)
		GetByEmail(ctx context.Context, email string) (*model.EmailUser, error)
		Update(ctx context.Context, user *model.EmailUser) error
	}

	// BusinessRepository handles businesses and their ownership graph.
	BusinessRepository interface {
		// CreateWithOwner atomically creates the owner user, the
		// business, the ownership link, and optionally a connect edge
		// to the referring business.
		CreateWithOwner(ctx context.Context, business *model.Business, owner *model.EmailUser, connect *model.BusinessConnect) error
		Get(ctx context.Context, id uuid.UUID) (*model.Business, error)
		GetWithRelations(ctx context.Context, id uuid.UUID) (*model.Business, error)
		// GetForUser resolves the business a user acts for, via the
		// ownership link for owners and the employment link for
		// employees.
		GetForUser(ctx context.Context, userID uuid.UUID) (*model.Business, error)
		// GetOwnerID resolves the primary (earliest active) owner.
		GetOwnerID(ctx context.Context, businessID uuid.UUID) (uuid.UUID, error)
		Update(ctx context.Context, business *model.Business) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		ListExcept(ctx context.Context, businessID uuid.UUID, p model.Pagination) ([]*model.Business, int, error)
		ListConnected(ctx context.Context, businessID uuid.UUID, p model.Pagination) ([]*model.Business, int, error)
		CreateEmployee(ctx context.Context, employee *model.EmailUser, link *model.BusinessEmployee) error
	}

	// ConnectRepository handles the dentist→laboratory connect edges.
	ConnectRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.BusinessConnect, error)
		GetByPair(ctx context.Context, dentistID, laboratoryID uuid.UUID) (*model.BusinessConnect, error)
		Create(ctx context.Context, connect *model.BusinessConnect) error
		Toggle(ctx context.Context, id uuid.UUID) (*model.BusinessConnect, error)
	}

	// AddressRepository handles business addresses and their
	// default-record invariant.
	AddressRepository interface {
		// Create enforces the headquarters rules and first-address
		// default inside one transaction serialized on the business.
		Create(ctx context.Context, address *model.BusinessAddress) error
		Get(ctx context.Context, id uuid.UUID) (*model.BusinessAddress, error)
		ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessAddress, error)
		Update(ctx context.Context, address *model.BusinessAddress) error
		// ToggleDefault flips the target's is_default and clears all
		// siblings in the same transaction.
		ToggleDefault(ctx context.Context, businessID, addressID uuid.UUID) (*model.BusinessAddress, error)
	}

	// AccountRepository handles business bank accounts.
	AccountRepository interface {
		Create(ctx context.Context, account *model.BusinessAccount) error
		Get(ctx context.Context, id uuid.UUID) (*model.BusinessAccount, error)
		ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessAccount, error)
		Update(ctx context.Context, account *model.BusinessAccount) error
		ToggleDefault(ctx context.Context, businessID, accountID uuid.UUID) (*model.BusinessAccount, error)
	}

	// ContactRepository handles business contact channels.
	ContactRepository interface {
		Create(ctx context.Context, contact *model.BusinessContact) error
		Get(ctx context.Context, id uuid.UUID) (*model.BusinessContact, error)
		ListForBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.BusinessContact, error)
		Update(ctx context.Context, contact *model.BusinessContact) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// OrderRepository handles orders and their append-only status
	// history.
	OrderRepository interface {
		// Create atomically inserts the order, its option tags, and
		// the initial pending status row.
		Create(ctx context.Context, order *model.Order, optionIDs []uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
		Update(ctx context.Context, order *model.Order, optionIDs []uuid.UUID) error
		// UpdateStatus moves latest_status from→to and appends the
		// status row in one transaction. Fails if the order is no
		// longer in the from status.
		UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatusValue, actorID uuid.UUID) error
		ListStatuses(ctx context.Context, orderID uuid.UUID) ([]*model.OrderStatus, error)
		List(ctx context.Context, filter OrderFilter) ([]*model.Order, int, error)
		Deactivate(ctx context.Context, id uuid.UUID) error
	}

	// TokenRepository handles verification secrets. Consume methods
	// pair the token write with the user-side effect in one
	// transaction.
	TokenRepository interface {
		CreatePasswordToken(ctx context.Context, token *model.PasswordToken) error
		// GetPasswordToken returns the row for the exact (user, token,
		// category) triple regardless of state.
		GetPasswordToken(ctx context.Context, userID uuid.UUID, token uuid.UUID, category model.TokenCategory) (*model.PasswordToken, error)
		HasUnexpiredPasswordToken(ctx context.Context, userID uuid.UUID, category model.TokenCategory, now time.Time) (bool, error)
		PasswordTokenValueExists(ctx context.Context, userID uuid.UUID, token uuid.UUID) (bool, error)
		// ConsumeForEmailVerification marks the token used and the
		// user's email verified atomically.
		ConsumeForEmailVerification(ctx context.Context, tokenID, userID uuid.UUID, usedAt time.Time) error
		// ConsumeForPasswordReset marks the token used and writes the
		// new password hash atomically.
		ConsumeForPasswordReset(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string, usedAt time.Time) error

		CreateMobileToken(ctx context.Context, token *model.MobileToken) error
		GetMobileToken(ctx context.Context, mobile int64, token int) (*model.MobileToken, error)
		HasUnexpiredMobileToken(ctx context.Context, mobile int64, now time.Time) (bool, error)
		// ConsumeForMobileVerification marks the token used and flags
		// every user holding that mobile as mobile-verified atomically.
		ConsumeForMobileVerification(ctx context.Context, tokenID uuid.UUID, mobile int64, usedAt time.Time) error
	}

	// DirectoryRepository handles static reference data.
	DirectoryRepository interface {
		ListStates(ctx context.Context) ([]*model.State, error)
		GetState(ctx context.Context, id uuid.UUID) (*model.State, error)
		ListDistricts(ctx context.Context, stateID uuid.UUID) ([]*model.District, error)
		ListCities(ctx context.Context, districtID uuid.UUID) ([]*model.City, error)
		ListJobTypes(ctx context.Context) ([]*model.JobType, error)
		ListOptions(ctx context.Context) ([]*model.OrderOption, error)
		// MissingOptionIDs returns the subset of ids with no
		// order_options row.
		MissingOptionIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	}
)

// OrderFilter scopes order listings to what the caller may see.
type OrderFilter struct {
	BusinessID uuid.UUID
	// UserID narrows to orders the user personally created or
	// received; zero value means no user scoping.
	UserID     uuid.UUID
	Status     model.OrderStatusValue
	ActiveOnly bool
	Pagination model.Pagination
}
