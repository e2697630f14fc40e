// Package validators enforces input rules before values reach the service
// layer. The gateway uses it for account credentials: username charset and
// length, password length within the bcrypt limit.
//
// Implementations of [Validator] are injected into services, so the rules
// stay testable apart from transport and storage.
package validators

import "context"

// Validator validates an arbitrary input value. The optional field names
// restrict the check to a subset of the value's fields; with none given the
// whole value is validated.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
