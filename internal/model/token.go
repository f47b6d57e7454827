package model

import (
	"time"

	"github.com/google/uuid"
)

type TokenCategory string

const (
	TokenCategorySignup TokenCategory = "signup"
	TokenCategoryReset  TokenCategory = "reset"
)

// Token TTLs. All verification codes live 15 minutes.
const (
	SignupTokenExpiry = 15 * time.Minute
	ResetTokenExpiry  = 15 * time.Minute
	MobileTokenExpiry = 15 * time.Minute
)

// PasswordToken is a single-use UUID secret mailed to a user for
// signup verification or password reset.
type PasswordToken struct {
	Base
	EmailUserID uuid.UUID     `db:"email_user_id" json:"email_user_id"`
	Token       uuid.UUID     `db:"token" json:"-"`
	Category    TokenCategory `db:"category" json:"category"`
	Expiry      time.Time     `db:"expiry" json:"expiry"`
	IsUsed      bool          `db:"is_used" json:"is_used"`
	UsedTime    *time.Time    `db:"used_time" json:"used_time,omitempty"`
}

// IsValid reports whether the token is still usable at now.
func (t *PasswordToken) IsValid(now time.Time) bool {
	return !t.IsUsed && now.Before(t.Expiry)
}

// MobileToken is a single-use 6-digit numeric code sent by SMS.
// Scoped by mobile number, not user.
type MobileToken struct {
	Base
	Mobile   int64      `db:"mobile" json:"mobile"`
	Token    int        `db:"token" json:"-"`
	Expiry   time.Time  `db:"expiry" json:"expiry"`
	IsUsed   bool       `db:"is_used" json:"is_used"`
	UsedTime *time.Time `db:"used_time" json:"used_time,omitempty"`
}

// IsValid reports whether the token is still usable at now.
func (t *MobileToken) IsValid(now time.Time) bool {
	return !t.IsUsed && now.Before(t.Expiry)
}
