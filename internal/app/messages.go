// Package app contains shared application-layer constants used across the
// gateway handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidJSON is returned when the request body cannot be decoded.
	MsgInvalidJSON = "Invalid JSON was passed"

	// MsgRegistered confirms a successful account registration.
	MsgRegistered = "registered"

	// MsgSessionClosed confirms that a chat session was ended and its
	// in-memory history discarded.
	MsgSessionClosed = "session closed"

	// MsgRegistrationRejected is logged when a registration attempt fails
	// validation or policy checks.
	MsgRegistrationRejected = "registration rejected"

	// MsgLoginRejected is logged when a login attempt fails.
	MsgLoginRejected = "login rejected"
)
