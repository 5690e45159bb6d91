// Package domain contains the core data types for the Lifelog application.
// This package depends only on uuid and is imported by every other internal
// package (store, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role names one of the capabilities a Tag can carry. Every entity that
// references a Tag asserts which role it expects; the store never enforces
// flag combinations, only role-consistency at the point of reference.
type Role int

const (
	// RoleType marks a tag usable as a note type ("Book", "Hike", ...).
	RoleType Role = iota
	// RoleTag marks a tag usable as a generic note label.
	RoleTag
	// RoleWorkout marks a tag usable as a workout designator.
	RoleWorkout
	// RolePerson marks a tag usable as a label on people.
	RolePerson
)

// String returns the lowercase role name used in error messages.
func (r Role) String() string {
	switch r {
	case RoleType:
		return "type"
	case RoleTag:
		return "tag"
	case RoleWorkout:
		return "workout"
	case RolePerson:
		return "person"
	}
	return "unknown"
}

// Tag is a taxonomy entry shared by notes and people.
// The four role flags are independent; a tag may carry several.
// Name is unique across all tags (1–25 characters) — uniqueness is enforced
// by the service layer, not the store.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsType      bool      `json:"isType"`
	IsTag       bool      `json:"isTag"`
	IsWorkout   bool      `json:"isWorkout"`
	IsPerson    bool      `json:"isPerson"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasRole reports whether the tag carries the given role flag.
// All role checks go through here so the flag-to-capability mapping
// lives in exactly one place.
func (t Tag) HasRole(r Role) bool {
	switch r {
	case RoleType:
		return t.IsType
	case RoleTag:
		return t.IsTag
	case RoleWorkout:
		return t.IsWorkout
	case RolePerson:
		return t.IsPerson
	}
	return false
}
