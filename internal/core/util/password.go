package util

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskapp/internal/core/domain"
)

func GenerateEncrypt(password string) (string, error) {
	encrypted, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(encrypted), nil
}

func ComparePassword(password, encrypted string) error {
	return bcrypt.CompareHashAndPassword([]byte(encrypted), []byte(password))
}

// ValidatePassword enforces the plaintext policy before any hashing
// happens: minimum length and no "password" substring in any casing.
func ValidatePassword(password string) []domain.FieldViolation {
	var violations []domain.FieldViolation

	if len(password) < domain.PasswordMinLength {
		violations = append(violations, domain.FieldViolation{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", domain.PasswordMinLength),
		})
	}

	if strings.Contains(strings.ToLower(password), "password") {
		violations = append(violations, domain.FieldViolation{
			Field:   "password",
			Message: "Password is invalid.",
		})
	}

	return violations
}
