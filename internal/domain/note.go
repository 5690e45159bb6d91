package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Note is a polymorphic journal entry. The base fields below are shared by
// every note; Fields carries the subtype-specific remainder (authors, format,
// rating, metrics, bike, workout, ...) exactly as validated — the document
// store persists base and variant fields as one flat document.
//
// Type must reference a RoleType tag, Tags must reference RoleTag tags, and
// People must reference existing people. No two notes may share the same
// (Date, Title) pair. All of this is enforced by the service layer at write
// time, never continuously.
type Note struct {
	ID          uuid.UUID
	Type        uuid.UUID
	Tags        []uuid.UUID
	Date        string // "2006-01-02"
	Title       string
	Description string
	People      []uuid.UUID
	Place       string
	PhotoAlbum  string
	Fields      map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Metric is a structured measurement embedded in a Hike or Bike Ride note.
// Every field is optional; a note's metrics array may not contain two
// structurally identical entries.
type Metric struct {
	DataSource    string   `json:"dataSource,omitempty"`
	StartDate     string   `json:"startDate,omitempty"` // RFC 3339
	MovingTime    *float64 `json:"movingTime,omitempty"`
	TotalTime     *float64 `json:"totalTime,omitempty"`
	Distance      *float64 `json:"distance,omitempty"`
	AvgSpeed      *float64 `json:"avgSpeed,omitempty"`
	MaxSpeed      *float64 `json:"maxSpeed,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
	MaxElevation  *float64 `json:"maxElevation,omitempty"`
}

// baseNoteKeys are the JSON keys owned by the Note struct itself. Everything
// else in an incoming document lands in Fields.
var baseNoteKeys = map[string]bool{
	"id": true, "type": true, "tags": true, "date": true, "title": true,
	"description": true, "people": true, "place": true, "photoAlbum": true,
	"createdAt": true, "updatedAt": true,
}

// noteBase mirrors Note's typed fields for JSON round-tripping.
type noteBase struct {
	ID          uuid.UUID   `json:"id"`
	Type        uuid.UUID   `json:"type"`
	Tags        []uuid.UUID `json:"tags"`
	Date        string      `json:"date"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	People      []uuid.UUID `json:"people"`
	Place       string      `json:"place,omitempty"`
	PhotoAlbum  string      `json:"photoAlbum,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// MarshalJSON flattens base and variant fields into a single JSON object.
func (n Note) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(noteBase{
		ID: n.ID, Type: n.Type, Tags: n.Tags, Date: n.Date, Title: n.Title,
		Description: n.Description, People: n.People, Place: n.Place,
		PhotoAlbum: n.PhotoAlbum, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	if len(n.Fields) == 0 {
		return raw, nil
	}
	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range n.Fields {
		if !baseNoteKeys[k] {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON splits a flat note document back into base and variant fields.
func (n *Note) UnmarshalJSON(data []byte) error {
	var base noteBase
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	fields := map[string]any{}
	for k, v := range all {
		if !baseNoteKeys[k] {
			fields[k] = v
		}
	}
	*n = Note{
		ID: base.ID, Type: base.Type, Tags: base.Tags, Date: base.Date,
		Title: base.Title, Description: base.Description, People: base.People,
		Place: base.Place, PhotoAlbum: base.PhotoAlbum,
		CreatedAt: base.CreatedAt, UpdatedAt: base.UpdatedAt,
	}
	if len(fields) > 0 {
		n.Fields = fields
	}
	return nil
}
