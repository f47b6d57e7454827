package model

import (
	"regexp"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryDentist    Category = "dentist"
	CategoryLaboratory Category = "laboratory"
)

type Business struct {
	Base
	Name       string     `db:"name" json:"name"`
	GSTIN      *string    `db:"gstin" json:"gstin,omitempty"`
	Category   Category   `db:"category" json:"category"`
	Website    *string    `db:"website" json:"website,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	IsClaimed  bool       `db:"is_claimed" json:"is_claimed"`
	ReferralID *uuid.UUID `db:"referral_id" json:"referral_id,omitempty"`

	// Loaded relations, nil unless the query asks for them.
	Contacts  []*BusinessContact `db:"-" json:"contacts,omitempty"`
	Addresses []*BusinessAddress `db:"-" json:"addresses,omitempty"`
	Accounts  []*BusinessAccount `db:"-" json:"accounts,omitempty"`
}

// BusinessOwner is an active ownership grant. A user holds at most one
// business role, so owner_id is unique across rows.
type BusinessOwner struct {
	Base
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}

// BusinessEmployee ties an employee to exactly one business.
type BusinessEmployee struct {
	Base
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	EmployeeID uuid.UUID `db:"employee_id" json:"employee_id"`
}

// BusinessConnect is the directed dentist→laboratory relationship that
// permits order placement. At most one row per ordered pair.
type BusinessConnect struct {
	Base
	DentistID    uuid.UUID `db:"dentist_id" json:"dentist_id"`
	LaboratoryID uuid.UUID `db:"laboratory_id" json:"laboratory_id"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

type AddressType string

const (
	AddressTypeHeadquarters AddressType = "headquarters"
	AddressTypeBranch       AddressType = "branch"
)

type BusinessAddress struct {
	Base
	Name        string      `db:"name" json:"name"`
	Address     string      `db:"address" json:"address"`
	City        string      `db:"city" json:"city"`
	Pincode     string      `db:"pincode" json:"pincode"`
	AddressType AddressType `db:"address_type" json:"address_type"`
	BusinessID  uuid.UUID   `db:"business_id" json:"business_id"`
	StateID     uuid.UUID   `db:"state_id" json:"state_id"`
	IsDefault   bool        `db:"is_default" json:"is_default"`
}

type AccountType string

const (
	AccountTypeCurrent AccountType = "current"
	AccountTypeSavings AccountType = "savings"
)

type BusinessAccount struct {
	Base
	AccountName   string      `db:"account_name" json:"account_name"`
	AccountNumber string      `db:"account_number" json:"account_number"`
	BankName      string      `db:"bank_name" json:"bank_name"`
	IFSCCode      string      `db:"ifsc_code" json:"ifsc_code"`
	AccountType   AccountType `db:"account_type" json:"account_type"`
	BusinessID    uuid.UUID   `db:"business_id" json:"business_id"`
	IsDefault     bool        `db:"is_default" json:"is_default"`
}

type ContactType string

const (
	ContactTypeMobile   ContactType = "mobile"
	ContactTypeLandline ContactType = "landline"
	ContactTypeEmail    ContactType = "email"
)

type BusinessContact struct {
	Base
	BusinessID  uuid.UUID   `db:"business_id" json:"business_id"`
	Contact     string      `db:"contact" json:"contact"`
	ContactType ContactType `db:"contact_type" json:"contact_type"`
	IsVerified  bool        `db:"is_verified" json:"is_verified"`
}

var (
	mobileContactRe   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	landlineContactRe = regexp.MustCompile(`^0?[0-9]{8,11}$`)
	emailContactRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidContact reports whether contact matches the format of its
// contact type.
func ValidContact(contactType ContactType, contact string) bool {
	switch contactType {
	case ContactTypeMobile:
		return mobileContactRe.MatchString(contact)
	case ContactTypeLandline:
		return landlineContactRe.MatchString(contact)
	case ContactTypeEmail:
		return emailContactRe.MatchString(contact)
	default:
		return false
	}
}

type CreateBusinessWithOwnerRequest struct {
	Name     string   `json:"name" binding:"required"`
	GSTIN    string   `json:"gstin"`
	Category Category `json:"category" binding:"required,oneof=dentist laboratory"`
	Website  string   `json:"website"`

	OwnerFirstName string `json:"owner_first_name" binding:"required"`
	OwnerLastName  string `json:"owner_last_name" binding:"required"`
	OwnerEmail     string `json:"owner_email" binding:"required,email"`
	OwnerMobile    int64  `json:"owner_mobile" binding:"required,mobile"`
}

type ConnectBusinessRequest struct {
	BusinessID uuid.UUID `json:"business_id" binding:"required"`
}

type ToggleConnectRequest struct {
	ConnectID uuid.UUID `json:"connect_id" binding:"required"`
}

type CreateAddressRequest struct {
	Name        string      `json:"name" binding:"required"`
	Address     string      `json:"address" binding:"required"`
	City        string      `json:"city" binding:"required"`
	Pincode     string      `json:"pincode" binding:"required,len=6,numeric"`
	AddressType AddressType `json:"address_type" binding:"required,oneof=headquarters branch"`
	StateID     uuid.UUID   `json:"state_id" binding:"required"`
	IsDefault   bool        `json:"is_default"`
}

type UpdateAddressRequest struct {
	Name      *string    `json:"name"`
	Address   *string    `json:"address"`
	City      *string    `json:"city"`
	Pincode   *string    `json:"pincode" binding:"omitempty,len=6,numeric"`
	StateID   *uuid.UUID `json:"state_id"`
	IsDefault *bool      `json:"is_default"`
}

type CreateAccountRequest struct {
	AccountName   string      `json:"account_name" binding:"required"`
	AccountNumber string      `json:"account_number" binding:"required"`
	BankName      string      `json:"bank_name" binding:"required"`
	IFSCCode      string      `json:"ifsc_code" binding:"required,len=11"`
	AccountType   AccountType `json:"account_type" binding:"required,oneof=current savings"`
	IsDefault     bool        `json:"is_default"`
}

type CreateContactRequest struct {
	Contact     string      `json:"contact" binding:"required"`
	ContactType ContactType `json:"contact_type" binding:"required,oneof=mobile landline email"`
}
