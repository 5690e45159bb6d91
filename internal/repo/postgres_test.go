package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/store"
	"github.com/dkeeling/lifelog/migrations"
	"github.com/dkeeling/lifelog/testutil"
)

// newPostgresStore connects to TEST_DATABASE_URL, applies all migrations and
// empties every collection so tests start from a known state. Skipped when no
// test database is configured.
func newPostgresStore(t *testing.T) *store.Postgres {
	t.Helper()

	db := testutil.NewSQLDB(t)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")
	_, err = provider.Up(context.Background())
	require.NoError(t, err, "apply migrations")

	for _, table := range []string{"tags", "people", "notes"} {
		_, err := db.ExecContext(context.Background(), "DELETE FROM "+table)
		require.NoError(t, err, "truncate %s", table)
	}

	return store.NewPostgres(testutil.NewPool(t))
}

func TestTagRepoPostgres_roundTrip(t *testing.T) {
	st := newPostgresStore(t)
	tags := repo.NewTagRepo(st.Tags())
	ctx := context.Background()

	created, err := tags.Create(ctx, domain.Tag{Name: "Travelling", IsTag: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := tags.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Travelling", got.Name)
	assert.True(t, got.IsTag)

	byName, err := tags.GetByName(ctx, "Travelling")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = tags.GetByName(ctx, "Nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got.Description = "trips away from home"
	updated, err := tags.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "trips away from home", updated.Description)

	deleted, err := tags.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Travelling", deleted.Name)

	_, err = tags.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagRepoPostgres_listOrderAndCount(t *testing.T) {
	st := newPostgresStore(t)
	tags := repo.NewTagRepo(st.Tags())
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := tags.Create(ctx, domain.Tag{Name: name, IsTag: true})
		require.NoError(t, err)
	}

	all, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Name, "oldest first")
	assert.Equal(t, "third", all[2].Name)

	n, err := tags.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPersonRepoPostgres_findByNameTriple(t *testing.T) {
	st := newPostgresStore(t)
	people := repo.NewPersonRepo(st.People())
	ctx := context.Background()

	_, err := people.Create(ctx, domain.Person{FirstName: "Ann", MiddleName: "B", LastName: "Lee"})
	require.NoError(t, err)
	noMiddle, err := people.Create(ctx, domain.Person{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	found, err := people.FindByNameTriple(ctx, "Ann", "", "Lee")
	require.NoError(t, err)
	assert.Equal(t, noMiddle.ID, found.ID, "empty optional parts match documents that omit them")

	_, err = people.FindByNameTriple(ctx, "Ann", "C", "Lee")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersonRepoPostgres_derivedNameNotPersisted(t *testing.T) {
	st := newPostgresStore(t)
	people := repo.NewPersonRepo(st.People())
	ctx := context.Background()

	created, err := people.Create(ctx, domain.Person{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	doc, err := st.People().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotContains(t, doc, "name", "the display name is derived, never stored")
	assert.Equal(t, "Ann", doc["firstName"])
}

func TestNoteRepoPostgres_referenceCounts(t *testing.T) {
	st := newPostgresStore(t)
	notes := repo.NewNoteRepo(st.Notes())
	people := repo.NewPersonRepo(st.People())
	ctx := context.Background()

	typeID := uuid.New()
	tagID := uuid.New()
	workoutID := uuid.New()
	personID := uuid.New()

	_, err := notes.Create(ctx, domain.Note{
		Type:   typeID,
		Date:   "2023-06-15",
		Title:  "Morning run",
		Tags:   []uuid.UUID{tagID},
		People: []uuid.UUID{personID},
		Fields: map[string]any{"workout": workoutID.String()},
	})
	require.NoError(t, err)
	_, err = notes.Create(ctx, domain.Note{
		Type:  typeID,
		Date:  "2023-06-16",
		Title: "Evening run",
	})
	require.NoError(t, err)
	_, err = people.Create(ctx, domain.Person{FirstName: "Ann", Tags: []uuid.UUID{tagID}})
	require.NoError(t, err)

	byType, err := notes.CountByType(ctx, typeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byType)

	byTag, err := notes.CountByTag(ctx, tagID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byTag)

	byWorkout, err := notes.CountByWorkout(ctx, workoutID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byWorkout)

	byPerson, err := notes.CountByPerson(ctx, personID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byPerson)

	none, err := notes.CountByTag(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)

	peopleByTag, err := people.CountByTag(ctx, tagID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), peopleByTag)
}

func TestNoteRepoPostgres_findByDateTitle(t *testing.T) {
	st := newPostgresStore(t)
	notes := repo.NewNoteRepo(st.Notes())
	ctx := context.Background()

	created, err := notes.Create(ctx, domain.Note{Date: "2023-06-15", Title: "Lake loop"})
	require.NoError(t, err)

	found, err := notes.FindByDateTitle(ctx, "2023-06-15", "Lake loop")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = notes.FindByDateTitle(ctx, "2023-06-15", "Ridge loop")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteRepoPostgres_variantFieldsRoundTrip(t *testing.T) {
	st := newPostgresStore(t)
	notes := repo.NewNoteRepo(st.Notes())
	ctx := context.Background()

	created, err := notes.Create(ctx, domain.Note{
		Date:  "2023-06-15",
		Title: "The Dispossessed",
		Fields: map[string]any{
			"authors": []any{"Ursula K. Le Guin"},
			"format":  "Book",
			"rating":  float64(9),
		},
	})
	require.NoError(t, err)

	got, err := notes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book", got.Fields["format"])
	assert.Equal(t, float64(9), got.Fields["rating"])
	assert.Equal(t, []any{"Ursula K. Le Guin"}, got.Fields["authors"])
}
