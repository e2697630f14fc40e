package http

import "errors"

// Sentinel errors used by the authentication and admin middleware when
// inspecting request headers. Callers can match against them with
// [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when
	// the incoming request does not include an "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAdminKey is returned by the admin middleware when the
	// "x-admin-key" header is missing or does not match the configured key,
	// or when no admin key is configured at all.
	ErrInvalidAdminKey = errors.New("invalid admin key")
)
