package characters

import "errors"

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrNoCharacterDir    = errors.New("character directory not found")
	ErrSourceUnavailable = errors.New("character source unavailable and no cached roster exists")
)
