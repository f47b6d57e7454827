package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordTokenIsValid(t *testing.T) {
	now := time.Now()

	fresh := &PasswordToken{Expiry: now.Add(10 * time.Minute)}
	assert.True(t, fresh.IsValid(now))

	expired := &PasswordToken{Expiry: now.Add(-time.Second)}
	assert.False(t, expired.IsValid(now))

	used := &PasswordToken{Expiry: now.Add(10 * time.Minute), IsUsed: true}
	assert.False(t, used.IsValid(now))

	// Expiry is exclusive
	boundary := &PasswordToken{Expiry: now}
	assert.False(t, boundary.IsValid(now))
}

func TestMobileTokenIsValid(t *testing.T) {
	now := time.Now()

	fresh := &MobileToken{Mobile: 9876543210, Token: 123456, Expiry: now.Add(MobileTokenExpiry)}
	assert.True(t, fresh.IsValid(now))
	assert.False(t, fresh.IsValid(now.Add(MobileTokenExpiry+time.Second)))

	fresh.IsUsed = true
	assert.False(t, fresh.IsValid(now))
}

func TestNewUserDetails(t *testing.T) {
	business := &Business{Name: "Smile Dental"}

	owner := &EmailUser{UserType: UserTypeOwner}
	details := NewUserDetails(owner, business)
	assert.Equal(t, business, details.Business)
	assert.Nil(t, details.Employer)

	employee := &EmailUser{UserType: UserTypeEmployee}
	details = NewUserDetails(employee, business)
	assert.Equal(t, business, details.Employer)
	assert.Nil(t, details.Business)
}

func TestUserDetailsSerializesSnakeCase(t *testing.T) {
	details := NewUserDetails(&EmailUser{UserType: UserTypeOwner}, &Business{Name: "Smile Dental"})
	details.Tokens = &TokenResponse{AccessToken: "a", RefreshToken: "r"}

	data, err := json.Marshal(details)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tokens"`)
	assert.NotContains(t, string(data), `"Tokens"`)

	details.Tokens = nil
	data, err = json.Marshal(details)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"tokens"`)
}
