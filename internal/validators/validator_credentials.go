package validators

import (
	"context"

	"github.com/cathy-ai/companion-gateway/models"
)

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

const (
	maxUsernameLength = 64

	// minPasswordLength applies to new passwords only; existing accounts
	// keep whatever they registered with.
	minPasswordLength = 8

	// maxPasswordLength stays below bcrypt's 72-byte input limit so no part
	// of the password is silently ignored.
	maxPasswordLength = 72
)

// CredentialsValidator enforces the account policy on registration input:
// a sane username charset and a minimum password length.
type CredentialsValidator struct {
}

func NewCredentialsValidator() Validator {
	return &CredentialsValidator{}
}

func (v *CredentialsValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.User:
		return v.validateUser(ctx, value, fields...)
	case *models.User:
		return v.validateUser(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *CredentialsValidator) validateUser(_ context.Context, user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldPassword}
	}

	for _, field := range fields {
		switch field {
		case FieldUsername:
			if err := validateUsername(user.Username); err != nil {
				return err
			}
		case FieldPassword:
			if err := validatePassword(user.Password); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if len(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return ErrInvalidUsernameChars
		}
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < minPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	}
	return false
}
