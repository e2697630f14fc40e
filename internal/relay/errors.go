package relay

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionOwner = errors.New("session belongs to another account")
	ErrTurnInProgress  = errors.New("a turn is already in progress for this session")
	ErrNoModel         = errors.New("no model selected and no default available")
)
