package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person is a top-level entity describing someone who appears in notes.
// No two people may share the same (FirstName, MiddleName, LastName) triple —
// enforced by the service layer.
// Tags must all carry RolePerson.
type Person struct {
	ID              uuid.UUID     `json:"id"`
	FirstName       string        `json:"firstName"`
	MiddleName      string        `json:"middleName,omitempty"`
	LastName        string        `json:"lastName,omitempty"`
	PreferredName   string        `json:"preferredName,omitempty"`
	Birthdate       string        `json:"birthdate,omitempty"` // "2006-01-02"
	GooglePhotoURL  string        `json:"googlePhotoUrl,omitempty"`
	PicasaContactID string        `json:"picasaContactId,omitempty"`
	Tags            []uuid.UUID   `json:"tags"`
	Notes           []PersonNote  `json:"notes"`
	Photos          []PersonPhoto `json:"photos"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// PersonNote is a dated free-form remark embedded in a Person.
type PersonNote struct {
	Date string `json:"date"` // "2006-01-02"
	Note string `json:"note"`
}

// PersonPhoto is a photo reference embedded in a Person.
type PersonPhoto struct {
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
}

// Name returns the display name: PreferredName when set, otherwise
// "FirstName LastName" with empty parts collapsed. Derived, never stored.
func (p Person) Name() string {
	if p.PreferredName != "" {
		return p.PreferredName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MarshalJSON includes the derived name field so clients never have to
// recompute it.
func (p Person) MarshalJSON() ([]byte, error) {
	type alias Person
	return json.Marshal(struct {
		alias
		DisplayName string `json:"name"`
	}{alias(p), p.Name()})
}
