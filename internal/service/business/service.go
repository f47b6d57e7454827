package business

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	"github.com/ryucoder/crown-backend/internal/service/notification"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/logger"
)

const bcryptCost = 12

type Service struct {
	businesses repository.BusinessRepository
	connects   repository.ConnectRepository
	addresses  repository.AddressRepository
	accounts   repository.AccountRepository
	contacts   repository.ContactRepository
	notifier   *notification.Service
	logger     *logger.Logger

	// defaultOwnerPassword seeds owners created on someone's behalf
	// until they claim the account through a password reset.
	defaultOwnerPassword string
}

func NewService(
	businesses repository.BusinessRepository,
	connects repository.ConnectRepository,
	addresses repository.AddressRepository,
	accounts repository.AccountRepository,
	contacts repository.ContactRepository,
	notifier *notification.Service,
	logger *logger.Logger,
	defaultOwnerPassword string,
) *Service {
	return &Service{
		businesses:           businesses,
		connects:             connects,
		addresses:            addresses,
		accounts:             accounts,
		contacts:             contacts,
		notifier:             notifier,
		logger:               logger,
		defaultOwnerPassword: defaultOwnerPassword,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	return s.businesses.GetWithRelations(ctx, id)
}

// Update edits the actor's own business profile.
func (s *Service) Update(ctx context.Context, actor *model.Actor, business *model.Business) (*model.Business, error) {
	if !actor.IsOwner() {
		return nil, apperrors.Forbidden("only owners can edit the business")
	}
	if business.ID != actor.Business.ID {
		return nil, apperrors.Forbidden("cannot edit another business")
	}
	if err := s.businesses.Update(ctx, business); err != nil {
		return nil, err
	}
	return s.businesses.Get(ctx, business.ID)
}

// Deactivate soft deletes the actor's business.
func (s *Service) Deactivate(ctx context.Context, actor *model.Actor) error {
	if !actor.IsOwner() {
		return apperrors.Forbidden("only owners can deactivate the business")
	}
	return s.businesses.Deactivate(ctx, actor.Business.ID)
}

// CreateRelatedBusiness creates an unclaimed business of the opposite
// category on behalf of the actor, along with its owner user and an
// active connect edge, all in one transaction. The seeded owner gets an
// invite email after commit.
func (s *Service) CreateRelatedBusiness(ctx context.Context, actor *model.Actor, req *model.CreateBusinessWithOwnerRequest) (*model.Business, error) {
	if actor.Business.Category == req.Category {
		return nil, apperrors.Precondition("category", "related business must be of the opposite category")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultOwnerPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	owner := &model.EmailUser{
		FirstName:    req.OwnerFirstName,
		LastName:     req.OwnerLastName,
		Email:        req.OwnerEmail,
		PasswordHash: string(hash),
		UserType:     model.UserTypeOwner,
		Mobile:       req.OwnerMobile,
		IsActive:     true,
	}

	referralID := actor.Business.ID
	business := &model.Business{
		Name:       req.Name,
		Category:   req.Category,
		IsActive:   true,
		IsClaimed:  false,
		ReferralID: &referralID,
	}
	if req.GSTIN != "" {
		business.GSTIN = &req.GSTIN
	}
	if req.Website != "" {
		business.Website = &req.Website
	}

	// The connect edge needs the new business ID up front.
	business.ID = uuid.New()
	connect := orientConnect(actor.Business, business)
	if err := s.businesses.CreateWithOwner(ctx, business, owner, connect); err != nil {
		return nil, err
	}

	s.notifier.NotifyOwnerInvite(ctx, owner.Email, business.Name)
	s.notifier.NotifyConnectChanged(ctx, connect, "connect_created")
	return business, nil
}

// Connect links the actor's business with the target. The stored edge
// always points dentist to laboratory regardless of who initiates.
func (s *Service) Connect(ctx context.Context, actor *model.Actor, targetID uuid.UUID) (*model.BusinessConnect, error) {
	if targetID == actor.Business.ID {
		return nil, apperrors.Precondition("business_id", "cannot connect a business to itself")
	}

	target, err := s.businesses.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Category == actor.Business.Category {
		return nil, apperrors.Precondition("business_id", "cannot connect businesses of the same category")
	}

	connect := orientConnect(actor.Business, target)
	if _, err := s.connects.GetByPair(ctx, connect.DentistID, connect.LaboratoryID); err == nil {
		return nil, apperrors.AlreadyExists("connect")
	} else if apperrors.CodeOf(err) != apperrors.CodeAbsent {
		return nil, err
	}

	connect.IsActive = true
	if err := s.connects.Create(ctx, connect); err != nil {
		return nil, err
	}

	s.notifier.NotifyConnectChanged(ctx, connect, "connect_created")
	return connect, nil
}

// ToggleConnect flips the active flag of a connect the actor's
// business participates in.
func (s *Service) ToggleConnect(ctx context.Context, actor *model.Actor, connectID uuid.UUID) (*model.BusinessConnect, error) {
	connect, err := s.connects.Get(ctx, connectID)
	if err != nil {
		return nil, err
	}
	if connect.DentistID != actor.Business.ID && connect.LaboratoryID != actor.Business.ID {
		return nil, apperrors.Forbidden("connect does not involve your business")
	}

	toggled, err := s.connects.Toggle(ctx, connectID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyConnectChanged(ctx, toggled, "connect_toggled")
	return toggled, nil
}

// ListExceptMine pages through active businesses other than the
// actor's own, for the connect picker.
func (s *Service) ListExceptMine(ctx context.Context, actor *model.Actor, p model.Pagination) ([]*model.Business, int, error) {
	return s.businesses.ListExcept(ctx, actor.Business.ID, p)
}

// ListConnected pages through businesses connected to the actor's,
// such as a laboratory's dentist customers.
func (s *Service) ListConnected(ctx context.Context, actor *model.Actor, p model.Pagination) ([]*model.Business, int, error) {
	return s.businesses.ListConnected(ctx, actor.Business.ID, p)
}

// CreateEmployee adds an employee user to the actor's business.
func (s *Service) CreateEmployee(ctx context.Context, actor *model.Actor, req *model.CreateEmployeeRequest) (*model.EmailUser, error) {
	if !actor.IsOwner() {
		return nil, apperrors.Forbidden("only owners can add employees")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	employee := &model.EmailUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		UserType:     model.UserTypeEmployee,
		Mobile:       req.Mobile,
		IsActive:     true,
	}
	link := &model.BusinessEmployee{BusinessID: actor.Business.ID}
	if err := s.businesses.CreateEmployee(ctx, employee, link); err != nil {
		return nil, err
	}
	return employee, nil
}

// CreateAddress adds an address to the actor's business. The repository
// enforces the headquarters and default rules transactionally.
func (s *Service) CreateAddress(ctx context.Context, actor *model.Actor, req *model.CreateAddressRequest) (*model.BusinessAddress, error) {
	address := &model.BusinessAddress{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		Pincode:     req.Pincode,
		AddressType: req.AddressType,
		BusinessID:  actor.Business.ID,
		StateID:     req.StateID,
		IsDefault:   req.IsDefault,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *Service) ListAddresses(ctx context.Context, actor *model.Actor) ([]*model.BusinessAddress, error) {
	return s.addresses.ListForBusiness(ctx, actor.Business.ID)
}

func (s *Service) UpdateAddress(ctx context.Context, actor *model.Actor, addressID uuid.UUID, req *model.UpdateAddressRequest) (*model.BusinessAddress, error) {
	address, err := s.addresses.Get(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.BusinessID != actor.Business.ID {
		return nil, apperrors.Forbidden("address does not belong to your business")
	}

	if req.Name != nil {
		address.Name = *req.Name
	}
	if req.Address != nil {
		address.Address = *req.Address
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.Pincode != nil {
		address.Pincode = *req.Pincode
	}
	if req.StateID != nil {
		address.StateID = *req.StateID
	}

	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, err
	}

	if req.IsDefault != nil && *req.IsDefault != address.IsDefault {
		return s.addresses.ToggleDefault(ctx, actor.Business.ID, address.ID)
	}
	return address, nil
}

// ToggleDefaultAddress makes the target address the default, clearing
// its siblings in the same transaction.
func (s *Service) ToggleDefaultAddress(ctx context.Context, actor *model.Actor, addressID uuid.UUID) (*model.BusinessAddress, error) {
	address, err := s.addresses.Get(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.BusinessID != actor.Business.ID {
		return nil, apperrors.Forbidden("address does not belong to your business")
	}
	return s.addresses.ToggleDefault(ctx, actor.Business.ID, addressID)
}

func (s *Service) CreateAccount(ctx context.Context, actor *model.Actor, req *model.CreateAccountRequest) (*model.BusinessAccount, error) {
	account := &model.BusinessAccount{
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		IFSCCode:      req.IFSCCode,
		AccountType:   req.AccountType,
		BusinessID:    actor.Business.ID,
		IsDefault:     req.IsDefault,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context, actor *model.Actor) ([]*model.BusinessAccount, error) {
	return s.accounts.ListForBusiness(ctx, actor.Business.ID)
}

func (s *Service) ToggleDefaultAccount(ctx context.Context, actor *model.Actor, accountID uuid.UUID) (*model.BusinessAccount, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.BusinessID != actor.Business.ID {
		return nil, apperrors.Forbidden("account does not belong to your business")
	}
	return s.accounts.ToggleDefault(ctx, actor.Business.ID, accountID)
}

// CreateContact adds a contact channel after validating its format
// against the channel type.
func (s *Service) CreateContact(ctx context.Context, actor *model.Actor, req *model.CreateContactRequest) (*model.BusinessContact, error) {
	if !model.ValidContact(req.ContactType, req.Contact) {
		return nil, apperrors.InvalidFormat("contact", fmt.Sprintf("not a valid %s contact", req.ContactType))
	}

	contact := &model.BusinessContact{
		BusinessID:  actor.Business.ID,
		Contact:     req.Contact,
		ContactType: req.ContactType,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) ListContacts(ctx context.Context, actor *model.Actor) ([]*model.BusinessContact, error) {
	return s.contacts.ListForBusiness(ctx, actor.Business.ID)
}

func (s *Service) UpdateContact(ctx context.Context, actor *model.Actor, contactID uuid.UUID, req *model.CreateContactRequest) (*model.BusinessContact, error) {
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.BusinessID != actor.Business.ID {
		return nil, apperrors.Forbidden("contact does not belong to your business")
	}
	if !model.ValidContact(req.ContactType, req.Contact) {
		return nil, apperrors.InvalidFormat("contact", fmt.Sprintf("not a valid %s contact", req.ContactType))
	}

	contact.Contact = req.Contact
	contact.ContactType = req.ContactType
	contact.IsVerified = false
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) DeleteContact(ctx context.Context, actor *model.Actor, contactID uuid.UUID) error {
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.BusinessID != actor.Business.ID {
		return apperrors.Forbidden("contact does not belong to your business")
	}
	return s.contacts.Delete(ctx, contactID)
}

// orientConnect returns the dentist→laboratory edge for two businesses
// of opposite categories.
func orientConnect(a, b *model.Business) *model.BusinessConnect {
	if a.Category == model.CategoryDentist {
		return &model.BusinessConnect{DentistID: a.ID, LaboratoryID: b.ID, IsActive: true}
	}
	return &model.BusinessConnect{DentistID: b.ID, LaboratoryID: a.ID, IsActive: true}
}
