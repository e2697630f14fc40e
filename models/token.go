package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers or
// stored on the client side.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	// Excluded from JSON serialization because only the compact string form
	// is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token
	// (base64url-encoded header.payload.signature).
	SignedString string `json:"-"`

	// Username is the account identifier extracted from the "sub" claim.
	Username string `json:"-"`
}

// GetUsername extracts the account identifier from the token's "sub" claim.
//
// Returns an error if the subject claim is missing or empty.
func (t *Token) GetUsername() (string, error) {
	subject, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting username from token: %w", err)
	}
	if subject == "" {
		return "", fmt.Errorf("empty subject claim in token")
	}

	return subject, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
