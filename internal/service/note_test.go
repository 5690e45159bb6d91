package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeeling/lifelog/internal/domain"
)

func TestNoteService_createBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	types := f.seedNoteTypes(t)
	travelling := f.mustTag(t, map[string]any{"name": "Travelling", "isTag": true})
	ann := f.mustPerson(t, map[string]any{"firstName": "Ann", "lastName": "Lee"})

	created, err := f.notes.Create(ctx, map[string]any{
		"type":    "Book",
		"date":    "2023-06-15",
		"title":   "The Dispossessed",
		"authors": []any{"Ursula K. Le Guin"},
		"format":  "Book",
		"status":  "Completed",
		"rating":  "9", // integer string coerces
		"tags":    []any{"Travelling"},
		"people":  []any{"Ann Lee"},
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, types["Book"].ID, created.Type)
	assert.Equal(t, []uuid.UUID{travelling.ID}, created.Tags)
	assert.Equal(t, []uuid.UUID{ann.ID}, created.People)
	assert.Equal(t, 9, created.Fields["rating"])
	assert.Equal(t, []any{"Ursula K. Le Guin"}, created.Fields["authors"])

	got, err := f.notes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", got.Title)
	assert.Equal(t, "Book", got.Fields["format"])
}

func TestNoteService_createBaseValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.notes.Create(context.Background(), map[string]any{})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	params := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		params[i] = fe.Param
	}
	assert.Equal(t, []string{"type", "date", "title"}, params)
}

func TestNoteService_createRejectsNonStringType(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  5.0,
		"date":  "2023-06-15",
		"title": "Ghost type",
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "type", ve.Fields[0].Param)
	assert.Equal(t, "The type must be a string.", ve.Fields[0].Msg)

	n, err := f.notes.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "nothing may be persisted with an unresolved type")
}

func TestNoteService_createRejectsNonStringFreeText(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":        "Hike",
		"date":        "2023-06-15",
		"title":       "Lake loop",
		"description": 42.0,
		"place":       true,
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "description", ve.Fields[0].Param)
	assert.Equal(t, "The description must be a string.", ve.Fields[0].Msg)
	assert.Equal(t, "place", ve.Fields[1].Param)
}

func TestNoteService_createRejectsNonStringWorkout(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":    "Workout",
		"date":    "2023-06-15",
		"title":   "Morning session",
		"workout": 3.0,
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "workout", ve.Fields[0].Param)
	assert.Equal(t, "The workout must be a string.", ve.Fields[0].Msg)
}

func TestNoteService_shapeErrorsSurfaceBeforeBadTypeReference(t *testing.T) {
	f := newFixture(t)

	// The type cannot be resolved AND the title is missing; the shape error
	// wins and the reference failure is held back.
	_, err := f.notes.Create(context.Background(), map[string]any{
		"type": "Rowing",
		"date": "2023-06-15",
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "title", ve.Fields[0].Param)
}

func TestNoteService_unknownTypeReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  "Rowing",
		"date":  "2023-06-15",
		"title": "Morning row",
	})

	var re *domain.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid type: Rowing.", re.Msg)
}

func TestNoteService_typeRoleMismatch(t *testing.T) {
	f := newFixture(t)
	f.mustTag(t, map[string]any{"name": "Travelling", "isTag": true})

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  "Travelling",
		"date":  "2023-06-15",
		"title": "Trip",
	})

	var re *domain.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid type: Travelling.", re.Msg)
}

func TestNoteService_unregisteredTypeCarriesBaseFieldsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.mustTag(t, map[string]any{"name": "Movie", "isType": true})

	created, err := f.notes.Create(ctx, map[string]any{
		"type":     "Movie",
		"date":     "2023-06-15",
		"title":    "Stalker",
		"director": "Tarkovsky", // no schema, passes through unvalidated
	})

	require.NoError(t, err)
	assert.Equal(t, movie.ID, created.Type)
	assert.Equal(t, "Tarkovsky", created.Fields["director"])
}

func TestNoteService_bookValidation(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()

	t.Run("duplicate authors", func(t *testing.T) {
		_, err := f.notes.Create(ctx, map[string]any{
			"type":    "Book",
			"date":    "2023-06-15",
			"title":   "The Dispossessed",
			"authors": []any{"Le Guin", "Le Guin"},
			"format":  "Book",
			"status":  "Completed",
			"rating":  9.0,
		})

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Len(t, ve.Fields, 1)
		assert.Equal(t, "Duplicate authors are not allowed.", ve.Fields[0].Msg)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := f.notes.Create(ctx, map[string]any{
			"type":    "Book",
			"date":    "2023-06-15",
			"title":   "The Dispossessed",
			"authors": []any{"Le Guin"},
			"format":  "Book",
			"status":  "Completed",
			"rating":  11.0,
		})

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Len(t, ve.Fields, 1)
		assert.Equal(t, "rating", ve.Fields[0].Param)
		assert.Equal(t, "A rating between 1 and 10 is required.", ve.Fields[0].Msg)
	})
}

func TestNoteService_workoutRequiresWorkoutField(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  "Workout",
		"date":  "2023-06-15",
		"title": "Morning session",
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "workout", ve.Fields[0].Param)
	assert.Equal(t, "A workout type is required.", ve.Fields[0].Msg)
}

func TestNoteService_workoutReferenceResolved(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()
	running := f.mustTag(t, map[string]any{"name": "Running", "isWorkout": true})

	created, err := f.notes.Create(ctx, map[string]any{
		"type":    "Workout",
		"date":    "2023-06-15",
		"title":   "Morning run",
		"workout": "Running",
		"metrics": []any{
			map[string]any{"property": "distance", "value": 5.0},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, running.ID.String(), created.Fields["workout"],
		"the workout name is replaced by the canonical id")
}

func TestNoteService_workoutInvalidReference(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	// Exists, but carries only the tag role.
	f.mustTag(t, map[string]any{"name": "Zumba", "isTag": true})

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":    "Workout",
		"date":    "2023-06-15",
		"title":   "Class",
		"workout": "Zumba",
	})

	var re *domain.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid workout: Zumba.", re.Msg)
}

func TestNoteService_duplicateDateTitle(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()

	first := f.mustNote(t, map[string]any{
		"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
	})

	t.Run("same pair rejected", func(t *testing.T) {
		_, err := f.notes.Create(ctx, map[string]any{
			"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
		})

		var de *domain.DuplicateError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "A note with date '2023-06-15' and title 'Lake loop' already exists.", de.Msg)
	})

	t.Run("same date different title allowed", func(t *testing.T) {
		_, err := f.notes.Create(ctx, map[string]any{
			"type": "Hike", "date": "2023-06-15", "title": "Ridge loop",
		})
		require.NoError(t, err)
	})

	t.Run("updating a note keeps its own pair", func(t *testing.T) {
		_, err := f.notes.Update(ctx, first.ID, map[string]any{
			"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
			"description": "rewritten",
		})
		require.NoError(t, err)
	})
}

func TestNoteService_invalidTagsBatched(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  "Hike",
		"date":  "2023-06-15",
		"title": "Lake loop",
		"tags":  []any{"golf", "fishing"},
	})

	var re *domain.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid tag(s): golf, fishing.", re.Msg)
}

func TestNoteService_invalidPeople(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":   "Hike",
		"date":   "2023-06-15",
		"title":  "Lake loop",
		"people": []any{"Nobody"},
	})

	var re *domain.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid person(s): Nobody.", re.Msg)
}

func TestNoteService_peopleResolveByIDToo(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ann := f.mustPerson(t, map[string]any{"firstName": "Ann"})

	created, err := f.notes.Create(context.Background(), map[string]any{
		"type":   "Hike",
		"date":   "2023-06-15",
		"title":  "Lake loop",
		"people": []any{ann.ID.String()},
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ann.ID}, created.People)
}

func TestNoteService_hikeMetricsValidated(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":  "Hike",
		"date":  "2023-06-15",
		"title": "Lake loop",
		"metrics": []any{
			map[string]any{"distance": -1.0},
		},
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "metrics[0].distance", ve.Fields[0].Param)
}

func TestNoteService_duplicateMetricsRejected(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	f.mustTag(t, map[string]any{"name": "Running", "isWorkout": true})

	entry := map[string]any{"property": "reps", "value": 12.0}
	_, err := f.notes.Create(context.Background(), map[string]any{
		"type":    "Workout",
		"date":    "2023-06-15",
		"title":   "Morning session",
		"workout": "Running",
		"metrics": []any{entry, entry},
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "Duplicate metrics are not allowed.", ve.Fields[0].Msg)
}

func TestNoteService_updatePreservesCreatedAt(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()
	created := f.mustNote(t, map[string]any{
		"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
	})

	updated, err := f.notes.Update(ctx, created.ID, map[string]any{
		"type": "Hike", "date": "2023-06-16", "title": "Lake loop again",
	})

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2023-06-16", updated.Date)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestNoteService_updateNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)

	_, err := f.notes.Update(context.Background(), uuid.New(), map[string]any{
		"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteService_delete(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()
	created := f.mustNote(t, map[string]any{
		"type": "Hike", "date": "2023-06-15", "title": "Lake loop",
	})

	deleted, err := f.notes.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake loop", deleted.Title)

	_, err = f.notes.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteService_listAndCount(t *testing.T) {
	f := newFixture(t)
	f.seedNoteTypes(t)
	ctx := context.Background()

	empty, err := f.notes.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	f.mustNote(t, map[string]any{"type": "Hike", "date": "2023-06-15", "title": "A"})
	f.mustNote(t, map[string]any{"type": "Hike", "date": "2023-06-15", "title": "B"})

	n, err := f.notes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
