package model

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	type mobilePayload struct {
		Mobile int64 `validate:"mobile"`
	}
	assert.NoError(t, v.Struct(mobilePayload{Mobile: 9876543210}))
	assert.Error(t, v.Struct(mobilePayload{Mobile: 1234567890}))
	assert.Error(t, v.Struct(mobilePayload{Mobile: 98765432101}))

	type teethPayload struct {
		Teeth TeethMap `validate:"teeth"`
	}
	assert.NoError(t, v.Struct(teethPayload{Teeth: TeethMap{"ul_1": true}}))
	assert.Error(t, v.Struct(teethPayload{Teeth: TeethMap{"xl_1": true}}))
	assert.Error(t, v.Struct(teethPayload{Teeth: TeethMap{}}))
}
