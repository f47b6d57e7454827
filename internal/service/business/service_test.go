package business

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/service/notification"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/logger"
)

type fakeBusinessRepo struct {
	businesses map[uuid.UUID]*model.Business
	employees  []*model.BusinessEmployee

	// captured by CreateWithOwner
	createdOwner   *model.EmailUser
	createdConnect *model.BusinessConnect
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{businesses: make(map[uuid.UUID]*model.Business)}
}

func (f *fakeBusinessRepo) CreateWithOwner(_ context.Context, business *model.Business, owner *model.EmailUser, connect *model.BusinessConnect) error {
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	if owner.ID == uuid.Nil {
		owner.ID = uuid.New()
	}
	f.businesses[business.ID] = business
	f.createdOwner = owner
	f.createdConnect = connect
	return nil
}

func (f *fakeBusinessRepo) Get(_ context.Context, id uuid.UUID) (*model.Business, error) {
	business, ok := f.businesses[id]
	if !ok {
		return nil, apperrors.Absent("business")
	}
	return business, nil
}

func (f *fakeBusinessRepo) GetWithRelations(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	return f.Get(ctx, id)
}

func (f *fakeBusinessRepo) GetForUser(context.Context, uuid.UUID) (*model.Business, error) {
	return nil, apperrors.Absent("business")
}

func (f *fakeBusinessRepo) GetOwnerID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, apperrors.Absent("owner")
}

func (f *fakeBusinessRepo) Update(_ context.Context, business *model.Business) error {
	if _, ok := f.businesses[business.ID]; !ok {
		return apperrors.Absent("business")
	}
	f.businesses[business.ID] = business
	return nil
}

func (f *fakeBusinessRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	business, ok := f.businesses[id]
	if !ok {
		return apperrors.Absent("business")
	}
	business.IsActive = false
	return nil
}

func (f *fakeBusinessRepo) ListExcept(context.Context, uuid.UUID, model.Pagination) ([]*model.Business, int, error) {
	return nil, 0, nil
}

func (f *fakeBusinessRepo) ListConnected(context.Context, uuid.UUID, model.Pagination) ([]*model.Business, int, error) {
	return nil, 0, nil
}

func (f *fakeBusinessRepo) CreateEmployee(_ context.Context, employee *model.EmailUser, link *model.BusinessEmployee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	link.EmployeeID = employee.ID
	f.employees = append(f.employees, link)
	return nil
}

type fakeConnectRepo struct {
	connects map[uuid.UUID]*model.BusinessConnect
}

func (f *fakeConnectRepo) Get(_ context.Context, id uuid.UUID) (*model.BusinessConnect, error) {
	connect, ok := f.connects[id]
	if !ok {
		return nil, apperrors.Absent("connect")
	}
	return connect, nil
}

func (f *fakeConnectRepo) GetByPair(_ context.Context, dentistID, laboratoryID uuid.UUID) (*model.BusinessConnect, error) {
	for _, connect := range f.connects {
		if connect.DentistID == dentistID && connect.LaboratoryID == laboratoryID {
			return connect, nil
		}
	}
	return nil, apperrors.Absent("connect")
}

func (f *fakeConnectRepo) Create(_ context.Context, connect *model.BusinessConnect) error {
	if connect.ID == uuid.Nil {
		connect.ID = uuid.New()
	}
	f.connects[connect.ID] = connect
	return nil
}

func (f *fakeConnectRepo) Toggle(_ context.Context, id uuid.UUID) (*model.BusinessConnect, error) {
	connect, ok := f.connects[id]
	if !ok {
		return nil, apperrors.Absent("connect")
	}
	connect.IsActive = !connect.IsActive
	return connect, nil
}

type fakeContactRepo struct {
	contacts map[uuid.UUID]*model.BusinessContact
}

func (f *fakeContactRepo) Create(_ context.Context, contact *model.BusinessContact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	f.contacts[contact.ID] = contact
	return nil
}

func (f *fakeContactRepo) Get(_ context.Context, id uuid.UUID) (*model.BusinessContact, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return nil, apperrors.Absent("contact")
	}
	return contact, nil
}

func (f *fakeContactRepo) ListForBusiness(_ context.Context, businessID uuid.UUID) ([]*model.BusinessContact, error) {
	var result []*model.BusinessContact
	for _, contact := range f.contacts {
		if contact.BusinessID == businessID {
			result = append(result, contact)
		}
	}
	return result, nil
}

func (f *fakeContactRepo) Update(_ context.Context, contact *model.BusinessContact) error {
	f.contacts[contact.ID] = contact
	return nil
}

func (f *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.contacts[id]; !ok {
		return apperrors.Absent("contact")
	}
	delete(f.contacts, id)
	return nil
}

type fakeAddressRepo struct {
	addresses map[uuid.UUID]*model.BusinessAddress
}

func (f *fakeAddressRepo) Create(_ context.Context, address *model.BusinessAddress) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	f.addresses[address.ID] = address
	return nil
}

func (f *fakeAddressRepo) Get(_ context.Context, id uuid.UUID) (*model.BusinessAddress, error) {
	address, ok := f.addresses[id]
	if !ok {
		return nil, apperrors.Absent("address")
	}
	return address, nil
}

func (f *fakeAddressRepo) ListForBusiness(context.Context, uuid.UUID) ([]*model.BusinessAddress, error) {
	return nil, nil
}

func (f *fakeAddressRepo) Update(_ context.Context, address *model.BusinessAddress) error {
	f.addresses[address.ID] = address
	return nil
}

func (f *fakeAddressRepo) ToggleDefault(_ context.Context, businessID, addressID uuid.UUID) (*model.BusinessAddress, error) {
	target, ok := f.addresses[addressID]
	if !ok {
		return nil, apperrors.Absent("address")
	}
	target.IsDefault = !target.IsDefault
	if target.IsDefault {
		for _, address := range f.addresses {
			if address.ID != addressID && address.BusinessID == businessID {
				address.IsDefault = false
			}
		}
	}
	return target, nil
}

type fakeAccountRepo struct{}

func (fakeAccountRepo) Create(context.Context, *model.BusinessAccount) error { return nil }
func (fakeAccountRepo) Get(context.Context, uuid.UUID) (*model.BusinessAccount, error) {
	return nil, apperrors.Absent("account")
}
func (fakeAccountRepo) ListForBusiness(context.Context, uuid.UUID) ([]*model.BusinessAccount, error) {
	return nil, nil
}
func (fakeAccountRepo) Update(context.Context, *model.BusinessAccount) error { return nil }
func (fakeAccountRepo) ToggleDefault(context.Context, uuid.UUID, uuid.UUID) (*model.BusinessAccount, error) {
	return nil, apperrors.Absent("account")
}

type noopEmail struct{}

func (noopEmail) SendSignupVerification(context.Context, string, string) error { return nil }
func (noopEmail) SendPasswordReset(context.Context, string, string) error      { return nil }
func (noopEmail) SendOwnerInvite(context.Context, string, string) error        { return nil }
func (noopEmail) SendCustom(context.Context, string, string, string) error     { return nil }

type recordBroker struct {
	published []string
}

func (b *recordBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	b.published = append(b.published, channel)
	return nil
}
func (*recordBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}
func (*recordBroker) Close() error { return nil }

type fixture struct {
	svc        *Service
	businesses *fakeBusinessRepo
	connects   *fakeConnectRepo
	contacts   *fakeContactRepo
	addresses  *fakeAddressRepo
	broker     *recordBroker

	dentist    *model.Actor
	laboratory *model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	businesses := newFakeBusinessRepo()
	connects := &fakeConnectRepo{connects: make(map[uuid.UUID]*model.BusinessConnect)}
	contacts := &fakeContactRepo{contacts: make(map[uuid.UUID]*model.BusinessContact)}
	addresses := &fakeAddressRepo{addresses: make(map[uuid.UUID]*model.BusinessAddress)}

	dentistBiz := &model.Business{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Smile Dental",
		Category: model.CategoryDentist,
		IsActive: true,
	}
	labBiz := &model.Business{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Crown Labs",
		Category: model.CategoryLaboratory,
		IsActive: true,
	}
	businesses.businesses[dentistBiz.ID] = dentistBiz
	businesses.businesses[labBiz.ID] = labBiz

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	broker := &recordBroker{}
	notifier := notification.NewService(noopEmail{}, broker, log, nil)

	svc := NewService(businesses, connects, addresses, fakeAccountRepo{}, contacts, notifier, log, "changeme123")

	return &fixture{
		svc:        svc,
		businesses: businesses,
		connects:   connects,
		contacts:   contacts,
		addresses:  addresses,
		broker:     broker,
		dentist: &model.Actor{
			User:     &model.EmailUser{Base: model.Base{ID: uuid.New()}, UserType: model.UserTypeOwner, IsActive: true},
			Business: dentistBiz,
		},
		laboratory: &model.Actor{
			User:     &model.EmailUser{Base: model.Base{ID: uuid.New()}, UserType: model.UserTypeOwner, IsActive: true},
			Business: labBiz,
		},
	}
}

func TestConnectOrientsDentistToLaboratory(t *testing.T) {
	f := newFixture(t)

	// initiated from the laboratory side, stored dentist -> laboratory
	connect, err := f.svc.Connect(context.Background(), f.laboratory, f.dentist.Business.ID)
	require.NoError(t, err)
	assert.Equal(t, f.dentist.Business.ID, connect.DentistID)
	assert.Equal(t, f.laboratory.Business.ID, connect.LaboratoryID)
	assert.True(t, connect.IsActive)
	assert.Equal(t, []string{"connects"}, f.broker.published)
}

func TestConnectRejectsSameCategory(t *testing.T) {
	f := newFixture(t)

	other := &model.Business{
		Base:     model.Base{ID: uuid.New()},
		Category: model.CategoryDentist,
		IsActive: true,
	}
	f.businesses.businesses[other.ID] = other

	_, err := f.svc.Connect(context.Background(), f.dentist, other.ID)
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
}

func TestConnectRejectsSelf(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Connect(context.Background(), f.dentist, f.dentist.Business.ID)
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
}

func TestConnectRejectsDuplicatePair(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Connect(context.Background(), f.dentist, f.laboratory.Business.ID)
	require.NoError(t, err)

	// same pair from either side is a duplicate
	_, err = f.svc.Connect(context.Background(), f.dentist, f.laboratory.Business.ID)
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.CodeOf(err))

	_, err = f.svc.Connect(context.Background(), f.laboratory, f.dentist.Business.ID)
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.CodeOf(err))
}

func TestToggleConnect(t *testing.T) {
	f := newFixture(t)

	connect, err := f.svc.Connect(context.Background(), f.dentist, f.laboratory.Business.ID)
	require.NoError(t, err)

	toggled, err := f.svc.ToggleConnect(context.Background(), f.dentist, connect.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = f.svc.ToggleConnect(context.Background(), f.laboratory, connect.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestToggleConnectRejectsOutsiders(t *testing.T) {
	f := newFixture(t)

	connect, err := f.svc.Connect(context.Background(), f.dentist, f.laboratory.Business.ID)
	require.NoError(t, err)

	outsider := &model.Actor{
		User:     &model.EmailUser{Base: model.Base{ID: uuid.New()}, UserType: model.UserTypeOwner},
		Business: &model.Business{Base: model.Base{ID: uuid.New()}, Category: model.CategoryDentist},
	}
	_, err = f.svc.ToggleConnect(context.Background(), outsider, connect.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestCreateRelatedBusiness(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateBusinessWithOwnerRequest{
		Name:           "Precision Labs",
		Category:       model.CategoryLaboratory,
		OwnerFirstName: "Ravi",
		OwnerLastName:  "Kumar",
		OwnerEmail:     "ravi@precisionlabs.example",
		OwnerMobile:    9876543210,
	}
	business, err := f.svc.CreateRelatedBusiness(context.Background(), f.dentist, req)
	require.NoError(t, err)

	assert.False(t, business.IsClaimed)
	require.NotNil(t, business.ReferralID)
	assert.Equal(t, f.dentist.Business.ID, *business.ReferralID)

	owner := f.businesses.createdOwner
	require.NotNil(t, owner)
	assert.Equal(t, model.UserTypeOwner, owner.UserType)
	assert.NotEmpty(t, owner.PasswordHash)
	assert.NotEqual(t, "changeme123", owner.PasswordHash)

	connect := f.businesses.createdConnect
	require.NotNil(t, connect)
	assert.Equal(t, f.dentist.Business.ID, connect.DentistID)
	assert.Equal(t, business.ID, connect.LaboratoryID)
	assert.True(t, connect.IsActive)
}

func TestCreateRelatedBusinessRejectsSameCategory(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateBusinessWithOwnerRequest{
		Name:           "Another Dental",
		Category:       model.CategoryDentist,
		OwnerFirstName: "Ravi",
		OwnerLastName:  "Kumar",
		OwnerEmail:     "ravi@example.com",
		OwnerMobile:    9876543210,
	}
	_, err := f.svc.CreateRelatedBusiness(context.Background(), f.dentist, req)
	assert.Equal(t, apperrors.CodePrecondition, apperrors.CodeOf(err))
}

func TestCreateContactValidatesFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateContact(context.Background(), f.dentist, &model.CreateContactRequest{
		Contact:     "1234567890",
		ContactType: model.ContactTypeMobile,
	})
	assert.Equal(t, apperrors.CodeInvalidFormat, apperrors.CodeOf(err))

	contact, err := f.svc.CreateContact(context.Background(), f.dentist, &model.CreateContactRequest{
		Contact:     "9876543210",
		ContactType: model.ContactTypeMobile,
	})
	require.NoError(t, err)
	assert.Equal(t, f.dentist.Business.ID, contact.BusinessID)
	assert.False(t, contact.IsVerified)
}

func TestUpdateContactResetsVerification(t *testing.T) {
	f := newFixture(t)

	contact, err := f.svc.CreateContact(context.Background(), f.dentist, &model.CreateContactRequest{
		Contact:     "9876543210",
		ContactType: model.ContactTypeMobile,
	})
	require.NoError(t, err)
	contact.IsVerified = true

	updated, err := f.svc.UpdateContact(context.Background(), f.dentist, contact.ID, &model.CreateContactRequest{
		Contact:     "9123456789",
		ContactType: model.ContactTypeMobile,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsVerified)
}

func TestContactOwnershipChecks(t *testing.T) {
	f := newFixture(t)

	contact, err := f.svc.CreateContact(context.Background(), f.dentist, &model.CreateContactRequest{
		Contact:     "9876543210",
		ContactType: model.ContactTypeMobile,
	})
	require.NoError(t, err)

	err = f.svc.DeleteContact(context.Background(), f.laboratory, contact.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	require.NoError(t, f.svc.DeleteContact(context.Background(), f.dentist, contact.ID))
}

func TestCreateEmployeeOwnerOnly(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateEmployeeRequest{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@smiledental.example",
		Password:  "s3cretpass",
		Mobile:    9876543211,
	}
	employee, err := f.svc.CreateEmployee(context.Background(), f.dentist, req)
	require.NoError(t, err)
	assert.Equal(t, model.UserTypeEmployee, employee.UserType)
	require.Len(t, f.businesses.employees, 1)
	assert.Equal(t, f.dentist.Business.ID, f.businesses.employees[0].BusinessID)

	employeeActor := &model.Actor{
		User:     &model.EmailUser{Base: model.Base{ID: employee.ID}, UserType: model.UserTypeEmployee},
		Business: f.dentist.Business,
	}
	_, err = f.svc.CreateEmployee(context.Background(), employeeActor, req)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestUpdateAddressOwnershipCheck(t *testing.T) {
	f := newFixture(t)

	address, err := f.svc.CreateAddress(context.Background(), f.dentist, &model.CreateAddressRequest{
		Name:        "Head Office",
		Address:     "12 MG Road",
		City:        "Pune",
		Pincode:     "411001",
		AddressType: model.AddressTypeHeadquarters,
		StateID:     uuid.New(),
	})
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.svc.UpdateAddress(context.Background(), f.laboratory, address.ID, &model.UpdateAddressRequest{Name: &name})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	updated, err := f.svc.UpdateAddress(context.Background(), f.dentist, address.ID, &model.UpdateAddressRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}
