// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "fiscalia/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a UserID where a ClearanceID is expected.
type (
	ClearanceID uuid.UUID
	UserID      uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseClearanceID(s string) (ClearanceID, error) {
	id, err := parseUUID(s, "clearance ID")
	return ClearanceID(id), err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

// String methods - for logging and debugging.

func (id ClearanceID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string      { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id ClearanceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; use IsNil() at the service layer for business
// validation, which lets store lookups return proper "not found" errors.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
