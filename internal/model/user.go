package model

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeOwner    UserType = "owner"
	UserTypeEmployee UserType = "employee"
)

type EmailUser struct {
	Base
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	UserType           UserType   `db:"user_type" json:"user_type"`
	Mobile             int64      `db:"mobile" json:"mobile"`
	IsEmailVerified    bool       `db:"is_email_verified" json:"is_email_verified"`
	IsMobileVerified   bool       `db:"is_mobile_verified" json:"is_mobile_verified"`
	MobileVerifiedTime *time.Time `db:"mobile_verified_time" json:"mobile_verified_time,omitempty"`
	IsActive           bool       `db:"is_active" json:"is_active"`
}

// TokenClaims is what the auth middleware resolves from a bearer token.
type TokenClaims struct {
	UserID   uuid.UUID
	Email    string
	UserType UserType
}

type TokenResponse struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Actor is the authenticated caller plus the business they act for.
// Every workflow operation takes it explicitly instead of reading
// ambient request state.
type Actor struct {
	User     *EmailUser
	Business *Business
}

// IsDentistSide reports whether the actor acts for a dentist business.
func (a *Actor) IsDentistSide() bool {
	return a.Business != nil && a.Business.Category == CategoryDentist
}

// IsOwner reports whether the actor owns the business they act for.
func (a *Actor) IsOwner() bool {
	return a.User != nil && a.User.UserType == UserTypeOwner
}

// UserDetails is the per-user_type view returned by the user details
// endpoint. Exactly one of Business or Employer is set: Business for
// owners, Employer for employees.
type UserDetails struct {
	User     *EmailUser `json:"user"`
	Business *Business  `json:"business,omitempty"`
	Employer *Business  `json:"employer,omitempty"`
	Tokens   *TokenResponse `json:"tokens,omitempty"`
}

// NewUserDetails selects the view shape from the user type with an
// explicit branch.
func NewUserDetails(user *EmailUser, business *Business) *UserDetails {
	details := &UserDetails{User: user}
	switch user.UserType {
	case UserTypeEmployee:
		details.Employer = business
	default:
		details.Business = business
	}
	return details
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	FirstName    string   `json:"first_name" binding:"required"`
	LastName     string   `json:"last_name" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Password     string   `json:"password" binding:"required,min=8"`
	Mobile       int64    `json:"mobile" binding:"required,mobile"`
	BusinessName string   `json:"business_name" binding:"required"`
	Category     Category `json:"category" binding:"required,oneof=dentist laboratory"`
	GSTIN        string   `json:"gstin"`
	Website      string   `json:"website"`
}

type VerifySignupRequest struct {
	Email string    `json:"email" binding:"required,email"`
	Token uuid.UUID `json:"token" binding:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string    `json:"email" binding:"required,email"`
	Token       uuid.UUID `json:"token" binding:"required"`
	PasswordOne string    `json:"password_one" binding:"required,min=8"`
	PasswordTwo string    `json:"password_two" binding:"required"`
}

type MobileTokenRequest struct {
	Mobile int64 `json:"mobile" binding:"required,mobile"`
}

type VerifyMobileTokenRequest struct {
	Mobile int64 `json:"mobile" binding:"required,mobile"`
	Token  int   `json:"token" binding:"required"`
}

type CreateEmployeeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Mobile    int64  `json:"mobile" binding:"required,mobile"`
}
