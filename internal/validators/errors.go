package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyUsername        = errors.New("username is required")
	ErrUsernameTooLong      = errors.New("username is too long")
	ErrInvalidUsernameChars = errors.New("username may only contain letters, digits, '.', '_' and '-'")
	ErrEmptyPassword        = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrPasswordTooLong      = errors.New("password is too long")
)
