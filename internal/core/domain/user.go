package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PasswordMinLength = 7
	AvatarMaxBytes    = 1_000_000
)

type User struct {
	ID                int
	UUID              uuid.UUID
	Name              string `validate:"required,min=2,max=100"`
	Email             string `validate:"required,email,max=255"`
	Age               int
	EncryptedPassword string `validate:"required"`
	Tokens            []string
	Avatar            []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Normalize trims name/email and lower-cases the email. Runs before
// Validate so uniqueness checks always see the canonical form.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate returns every profile field rule the entity currently
// violates. The password policy is checked separately, on the
// plaintext, before hashing (see util.ValidatePassword); the hash
// itself can never be empty because hashing precedes the first persist
// and the column is NOT NULL.
func (u *User) Validate() []FieldViolation {
	var violations []FieldViolation

	if u.Name == "" {
		violations = append(violations, FieldViolation{Field: "name", Message: "Name is required"})
	}

	if u.Email == "" {
		violations = append(violations, FieldViolation{Field: "email", Message: "Email is required"})
	} else if _, err := mail.ParseAddress(u.Email); err != nil {
		violations = append(violations, FieldViolation{Field: "email", Message: "E-mail is invalid"})
	}

	if u.Age < 0 {
		violations = append(violations, FieldViolation{Field: "age", Message: "Age must be a positive number"})
	}

	return violations
}

func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}

	return false
}

func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0
}
