package tui

import (
	"errors"
	"strings"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
)

func humanizeGatewayError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, adapter.ErrUnauthorized):
		return "Wrong username or password"
	case errors.Is(err, adapter.ErrConflict):
		return "That username is already taken"
	case errors.Is(err, adapter.ErrForbidden):
		return "This account is disabled"
	case errors.Is(err, adapter.ErrBadGateway), errors.Is(err, adapter.ErrServiceUnavailable):
		return "The model backend is unavailable, try again in a minute"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or the gateway is unreachable"
	}

	return err.Error()
}
