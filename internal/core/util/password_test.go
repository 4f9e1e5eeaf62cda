package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEncrypt_ProducesVerifiableHash(t *testing.T) {
	encrypted, err := GenerateEncrypt("red12345")

	assert.NoError(t, err)
	assert.NotEmpty(t, encrypted)
	assert.NotEqual(t, "red12345", encrypted)

	assert.NoError(t, ComparePassword("red12345", encrypted))
	assert.Error(t, ComparePassword("wrong-pass", encrypted))
}

func TestGenerateEncrypt_SaltsEveryHash(t *testing.T) {
	first, err := GenerateEncrypt("red12345")
	assert.NoError(t, err)

	second, err := GenerateEncrypt("red12345")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidatePassword_Success(t *testing.T) {
	assert.Empty(t, ValidatePassword("red12345"))
	assert.Empty(t, ValidatePassword("7chars!"))
}

func TestValidatePassword_TooShort(t *testing.T) {
	violations := ValidatePassword("short1")

	assert.Len(t, violations, 1)
	assert.Equal(t, "password", violations[0].Field)
	assert.Equal(t, "Password must be at least 7 characters", violations[0].Message)
}

func TestValidatePassword_ForbiddenSubstring(t *testing.T) {
	for _, candidate := range []string{"password123", "MyPassWorD1", "xxPASSWORDxx"} {
		violations := ValidatePassword(candidate)

		assert.Len(t, violations, 1)
		assert.Equal(t, "Password is invalid.", violations[0].Message)
	}
}

func TestValidatePassword_ShortAndForbidden(t *testing.T) {
	violations := ValidatePassword("pass")

	assert.Len(t, violations, 1)
	assert.Equal(t, "Password must be at least 7 characters", violations[0].Message)
}
