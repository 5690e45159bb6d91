// Package notes defines the note-subtype registry. Each subtype (Book, Hike,
// Bike Ride, Workout) owns its field schema and metric shape; adding a new
// subtype means registering a schema here — the generic validation engine in
// internal/validate is never touched.
package notes

import (
	"errors"
	"fmt"

	"github.com/dkeeling/lifelog/internal/validate"
)

// ErrUnknownType is returned by Registry.Get for type names with no
// registered schema.
var ErrUnknownType = errors.New("unknown note type")

// MetricShape selects how a subtype's metrics array is validated.
type MetricShape int

const (
	// MetricsNone — the subtype carries no metrics array.
	MetricsNone MetricShape = iota
	// MetricsTimeSeries — entries are Metric records (Hike, Bike Ride).
	MetricsTimeSeries
	// MetricsPropertyValue — entries are {property, value} pairs (Workout).
	MetricsPropertyValue
)

// Schema describes one note subtype: its extra fields on top of the note
// base, and the shape its metrics array must take.
type Schema struct {
	TypeName string
	Fields   []validate.Field
	Metrics  MetricShape
}

// Registry maps type-tag names to subtype schemas. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: map[string]Schema{}}
}

// Register adds (or replaces) a subtype schema, keyed on Schema.TypeName.
func (r *Registry) Register(s Schema) {
	r.schemas[s.TypeName] = s
}

// Get returns the schema registered for typeName, or ErrUnknownType.
func (r *Registry) Get(typeName string) (Schema, error) {
	s, ok := r.schemas[typeName]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return s, nil
}

// Lookup is Get without the error: the second return is false for
// unregistered names. Notes whose type tag has no registered schema carry
// base fields only.
func (r *Registry) Lookup(typeName string) (Schema, bool) {
	s, ok := r.schemas[typeName]
	return s, ok
}

// Bikes is the fixed set of bikes a Bike Ride may reference.
var Bikes = []string{"Road Bike", "Mountain Bike", "Hybrid Bike", "Tandem", "Stationary"}

// BookFormats and BookStatuses are the enumerated Book field values.
var (
	BookFormats  = []string{"Book", "eBook", "Audiobook"}
	BookStatuses = []string{"Completed", "Abandoned"}
)

// BaseFields returns the validation schema shared by every note.
func BaseFields() []validate.Field {
	return []validate.Field{
		{Param: "type", Rules: []validate.Rule{
			validate.Required("A type is required."),
			validate.String("The type must be a string."),
		}},
		{Param: "date", Rules: []validate.Rule{
			validate.Required("A date is required."),
			validate.Date("A valid date is required."),
		}},
		{Param: "title", Rules: []validate.Rule{
			validate.Required("A title is required."),
			validate.StrLen(1, 100, "The title must be between 1 and 100 characters."),
		}},
		{Param: "description", Rules: []validate.Rule{
			validate.String("The description must be a string."),
		}},
		{Param: "place", Rules: []validate.Rule{
			validate.String("The place must be a string."),
		}},
		{Param: "photoAlbum", Rules: []validate.Rule{
			validate.String("The photo album must be a string."),
		}},
		{Param: "tags", Rules: []validate.Rule{
			validate.StringArray("The tags must be supplied as an array."),
		}},
		{Param: "people", Rules: []validate.Rule{
			validate.StringArray("The people must be supplied as an array."),
		}},
	}
}

// Default returns a registry with the four built-in subtypes.
func Default() *Registry {
	r := NewRegistry()

	r.Register(Schema{
		TypeName: "Book",
		Fields: []validate.Field{
			{Param: "authors", Rules: []validate.Rule{
				validate.Required("At least one author is required."),
				validate.StringArray("The authors must be supplied as an array."),
				validate.MinItems(1, "At least one author is required."),
				validate.UniqueStrings("Duplicate authors are not allowed."),
			}},
			{Param: "format", Rules: []validate.Rule{
				validate.Required("A format is required."),
				validate.Enum(BookFormats, "The format must be one of 'Book', 'eBook' or 'Audiobook'."),
			}},
			{Param: "status", Rules: []validate.Rule{
				validate.Required("A status is required."),
				validate.Enum(BookStatuses, "The status must be either 'Completed' or 'Abandoned'."),
			}},
			{Param: "rating", Rules: []validate.Rule{
				validate.Required("A rating between 1 and 10 is required."),
				validate.IntRange(1, 10, "A rating between 1 and 10 is required."),
			}},
		},
		Metrics: MetricsNone,
	})

	r.Register(Schema{
		TypeName: "Hike",
		Metrics:  MetricsTimeSeries,
	})

	r.Register(Schema{
		TypeName: "Bike Ride",
		Fields: []validate.Field{
			{Param: "bike", Rules: []validate.Rule{
				validate.Required("A bike is required."),
				validate.Enum(Bikes, "The bike must be one of 'Road Bike', 'Mountain Bike', 'Hybrid Bike', 'Tandem' or 'Stationary'."),
			}},
		},
		Metrics: MetricsTimeSeries,
	})

	r.Register(Schema{
		TypeName: "Workout",
		Fields: []validate.Field{
			{Param: "workout", Rules: []validate.Rule{
				validate.Required("A workout type is required."),
				validate.String("The workout must be a string."),
			}},
		},
		Metrics: MetricsPropertyValue,
	})

	return r
}
