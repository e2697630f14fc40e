package adapter

import "errors"

var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("client unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrBadGateway         = errors.New("upstream unavailable")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrServerError        = errors.New("server error")
	ErrStreamInterrupted  = errors.New("stream interrupted")
)
