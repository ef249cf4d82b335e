package dto

import (
	"errors"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CreateUserRequest(t *testing.T) {
	req := CreateUserRequest{Name: "Ana", Email: "not-an-email", Password: "secret1"}

	err := Validate(&req)

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)
	assert.Equal(t, "must be a valid email address", ve.Message)
}

func TestValidate_ShortPassword(t *testing.T) {
	req := CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "123"}

	err := Validate(&req)

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "password", ve.Field)
	assert.Equal(t, "must be at least 6", ve.Message)
}

func TestUpdateUserRequest_ToInput(t *testing.T) {
	role := "admin"
	active := false
	in := (&UpdateUserRequest{Role: &role, Active: &active}).ToInput()

	require.NotNil(t, in.Role)
	assert.Equal(t, user.RoleAdmin, *in.Role)
	assert.False(t, *in.Active)
	assert.Nil(t, in.Name)
}
