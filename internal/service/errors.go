package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")
	ErrUserDisabled        = errors.New("account is disabled")

	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrInviteRequired       = errors.New("invite code is required")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrUnknownRole = errors.New("unknown role")
)
