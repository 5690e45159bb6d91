package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/store"
)

// PersonRepo defines the persistence operations for People.
type PersonRepo interface {
	// Create assigns an id and timestamps, persists the person, and returns it.
	Create(ctx context.Context, p domain.Person) (domain.Person, error)

	// GetByID returns a single person, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error)

	// FindByNameTriple returns the person whose (first, middle, last) name
	// matches exactly, or domain.ErrNotFound.
	FindByNameTriple(ctx context.Context, first, middle, last string) (domain.Person, error)

	// FindByName returns the person whose derived display name matches, or
	// domain.ErrNotFound. Used to resolve name-form person references.
	FindByName(ctx context.Context, name string) (domain.Person, error)

	// List returns all people, oldest first.
	List(ctx context.Context) ([]domain.Person, error)

	// Count returns the total number of people.
	Count(ctx context.Context) (int64, error)

	// Update replaces the stored person, refreshing UpdatedAt.
	Update(ctx context.Context, p domain.Person) (domain.Person, error)

	// Delete removes and returns the person, or domain.ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) (domain.Person, error)

	// CountByTag returns how many people reference tagID in their tags array.
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

// docPersonRepo is the document-store implementation of PersonRepo.
type docPersonRepo struct {
	c store.Collection
}

// NewPersonRepo constructs a PersonRepo backed by the given collection.
func NewPersonRepo(c store.Collection) PersonRepo {
	return &docPersonRepo{c: c}
}

// personDoc marshals a person, stripping the derived "name" field so the
// computed display name is never persisted.
func personDoc(p domain.Person) (store.Document, error) {
	doc, err := toDoc(p)
	if err != nil {
		return nil, err
	}
	delete(doc, "name")
	return doc, nil
}

func (r *docPersonRepo) Create(ctx context.Context, p domain.Person) (domain.Person, error) {
	now := time.Now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now

	doc, err := personDoc(p)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Create: %w", err)
	}
	if err := r.c.Insert(ctx, p.ID, doc); err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Create: %w", err)
	}
	return p, nil
}

func (r *docPersonRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error) {
	doc, err := r.c.FindByID(ctx, id)
	if err != nil {
		return domain.Person{}, wrapNotFound("repo.PersonRepo.GetByID", err, domain.ErrNotFound)
	}
	p, err := fromDoc[domain.Person](doc)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.GetByID: decode: %w", err)
	}
	return p, nil
}

// FindByNameTriple filters on firstName in the store and matches the middle
// and last names in memory — optional name parts are omitted from stored
// documents, so an equality filter on an empty part would never match.
func (r *docPersonRepo) FindByNameTriple(ctx context.Context, first, middle, last string) (domain.Person, error) {
	docs, err := r.c.Find(ctx, store.Filter{Eq: map[string]any{"firstName": first}})
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.FindByNameTriple: %w", err)
	}
	for _, doc := range docs {
		p, err := fromDoc[domain.Person](doc)
		if err != nil {
			return domain.Person{}, fmt.Errorf("repo.PersonRepo.FindByNameTriple: decode: %w", err)
		}
		if p.MiddleName == middle && p.LastName == last {
			return p, nil
		}
	}
	return domain.Person{}, fmt.Errorf("repo.PersonRepo.FindByNameTriple: %w", domain.ErrNotFound)
}

func (r *docPersonRepo) FindByName(ctx context.Context, name string) (domain.Person, error) {
	people, err := r.List(ctx)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.FindByName: %w", err)
	}
	for _, p := range people {
		if p.Name() == name {
			return p, nil
		}
	}
	return domain.Person{}, fmt.Errorf("repo.PersonRepo.FindByName: %w", domain.ErrNotFound)
}

func (r *docPersonRepo) List(ctx context.Context) ([]domain.Person, error) {
	docs, err := r.c.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("repo.PersonRepo.List: %w", err)
	}
	people := make([]domain.Person, 0, len(docs))
	for _, doc := range docs {
		p, err := fromDoc[domain.Person](doc)
		if err != nil {
			return nil, fmt.Errorf("repo.PersonRepo.List: decode: %w", err)
		}
		people = append(people, p)
	}
	return people, nil
}

func (r *docPersonRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("repo.PersonRepo.Count: %w", err)
	}
	return n, nil
}

func (r *docPersonRepo) Update(ctx context.Context, p domain.Person) (domain.Person, error) {
	p.UpdatedAt = time.Now().UTC()

	doc, err := personDoc(p)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Update: %w", err)
	}
	if _, err := r.c.UpdateByID(ctx, p.ID, doc); err != nil {
		return domain.Person{}, wrapNotFound("repo.PersonRepo.Update", err, domain.ErrNotFound)
	}
	return p, nil
}

func (r *docPersonRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Person, error) {
	doc, err := r.c.DeleteByID(ctx, id)
	if err != nil {
		return domain.Person{}, wrapNotFound("repo.PersonRepo.Delete", err, domain.ErrNotFound)
	}
	p, err := fromDoc[domain.Person](doc)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Delete: decode: %w", err)
	}
	return p, nil
}

func (r *docPersonRepo) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{Has: map[string]string{"tags": tagID.String()}})
	if err != nil {
		return 0, fmt.Errorf("repo.PersonRepo.CountByTag: %w", err)
	}
	return n, nil
}
