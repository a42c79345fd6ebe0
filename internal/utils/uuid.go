// Package utils holds small helpers shared by the services.
package utils

import "github.com/google/uuid"

// UUIDGenerator issues entry and record identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, so entry ids sort by creation.
// It falls back to a random v4 when the clock source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
