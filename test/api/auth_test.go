package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLoginFlow(t *testing.T) {
	requireServer(t)

	email := uniqueEmail("owner")
	signup := map[string]interface{}{
		"first_name":    "Ravi",
		"last_name":     "Kumar",
		"email":         email,
		"password":      "s3cretpass",
		"mobile":        9876543210,
		"business_name": uniqueName("Smile Dental"),
		"category":      "dentist",
	}
	resp := makeRequest(t, http.MethodPost, "/auth/signup", signup, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, resp.Body.Success)

	// login before verification is rejected with a precondition error
	resp = makeRequest(t, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "s3cretpass",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// wrong password is unauthorized
	resp = makeRequest(t, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetRequestUnknownEmail(t *testing.T) {
	requireServer(t)

	resp := makeRequest(t, http.MethodPost, "/auth/password-reset", map[string]interface{}{
		"email": uniqueEmail("ghost"),
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	requireServer(t)

	resp := makeRequest(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = makeRequest(t, http.MethodGet, "/orders", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDirectoryIsPublic(t *testing.T) {
	requireServer(t)

	resp := makeRequest(t, http.MethodGet, "/directory/states", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Body.Success)
}
