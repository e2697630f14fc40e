package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for session IDs and
// invite codes. V7 UUIDs sort by creation time, which keeps session log
// directories naturally ordered on disk.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
