package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/notes"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/service"
	"github.com/dkeeling/lifelog/internal/store"
	"github.com/dkeeling/lifelog/internal/taxonomy"
)

// fixture wires the full service stack over the in-memory store driver.
// Tests drive the services through the same pipeline the handlers use and
// reach into the repos directly only to fabricate referencing documents.
type fixture struct {
	tagRepo    repo.TagRepo
	personRepo repo.PersonRepo
	noteRepo   repo.NoteRepo

	tags   *service.TagService
	people *service.PersonService
	notes  *service.NoteService
	export *service.ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewMemory()
	tagRepo := repo.NewTagRepo(mem.Tags())
	personRepo := repo.NewPersonRepo(mem.People())
	noteRepo := repo.NewNoteRepo(mem.Notes())

	graph := taxonomy.New(tagRepo)
	integrity := service.NewIntegrityChecker(noteRepo, personRepo)

	return &fixture{
		tagRepo:    tagRepo,
		personRepo: personRepo,
		noteRepo:   noteRepo,
		tags:       service.NewTagService(tagRepo, integrity),
		people:     service.NewPersonService(personRepo, graph, integrity),
		notes:      service.NewNoteService(noteRepo, personRepo, graph, notes.Default()),
		export:     service.NewExportService(noteRepo, tagRepo, personRepo),
	}
}

// mustTag creates a tag through the service and fails the test on rejection.
func (f *fixture) mustTag(t *testing.T, payload map[string]any) domain.Tag {
	t.Helper()
	tag, err := f.tags.Create(context.Background(), payload)
	require.NoError(t, err)
	return tag
}

// mustPerson creates a person through the service and fails the test on
// rejection.
func (f *fixture) mustPerson(t *testing.T, payload map[string]any) domain.Person {
	t.Helper()
	p, err := f.people.Create(context.Background(), payload)
	require.NoError(t, err)
	return p
}

// mustNote creates a note through the service and fails the test on rejection.
func (f *fixture) mustNote(t *testing.T, payload map[string]any) domain.Note {
	t.Helper()
	n, err := f.notes.Create(context.Background(), payload)
	require.NoError(t, err)
	return n
}

// seedNoteTypes registers the built-in subtype names as type tags so note
// payloads can reference them.
func (f *fixture) seedNoteTypes(t *testing.T) map[string]domain.Tag {
	t.Helper()
	out := map[string]domain.Tag{}
	for _, name := range []string{"Book", "Hike", "Bike Ride", "Workout"} {
		out[name] = f.mustTag(t, map[string]any{"name": name, "isType": true})
	}
	return out
}
