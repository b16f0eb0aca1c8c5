package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	assert.True(t, isValidPhone("13900000001"))
	assert.True(t, isValidPhone("+86 139-0000-0001"))
	assert.True(t, isValidPhone("5551234"))

	assert.False(t, isValidPhone(""))
	assert.False(t, isValidPhone("123"))
	assert.False(t, isValidPhone("12345678901234567890"))
	assert.False(t, isValidPhone("not a phone"))
}

func TestValidateIdempotencyKey(t *testing.T) {
	key, err := validateIdempotencyKey("")
	assert.Nil(t, err)
	assert.Nil(t, key)

	key, err = validateIdempotencyKey("3e0170e7-9f6b-4b35-8f34-0f4b5d9dbb71")
	assert.Nil(t, err)
	assert.Equal(t, "3e0170e7-9f6b-4b35-8f34-0f4b5d9dbb71", *key)

	_, err = validateIdempotencyKey("not-a-uuid")
	var de *DomainError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
}

func TestValidateFilterEnums(t *testing.T) {
	assert.Nil(t, validateFilterEnums("", ""))
	assert.Nil(t, validateFilterEnums("WEBSITE", "NEW"))
	assert.NotNil(t, validateFilterEnums("CARRIER_PIGEON", ""))
	assert.NotNil(t, validateFilterEnums("", "LIMBO"))
}
