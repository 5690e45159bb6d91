package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/store"
)

// TagRepo defines the persistence operations for Tags.
type TagRepo interface {
	// Create assigns an id and timestamps, persists the tag, and returns it.
	Create(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// GetByID returns a single tag, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// GetByName returns the tag with the exact name, or domain.ErrNotFound.
	// Names are unique by invariant, but the store does not enforce it; the
	// first match wins.
	GetByName(ctx context.Context, name string) (domain.Tag, error)

	// List returns all tags, oldest first.
	List(ctx context.Context) ([]domain.Tag, error)

	// Count returns the total number of tags.
	Count(ctx context.Context) (int64, error)

	// Update replaces the stored tag, refreshing UpdatedAt.
	// Returns domain.ErrNotFound when no tag with that id exists.
	Update(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// Delete removes and returns the tag, or domain.ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

// docTagRepo is the document-store implementation of TagRepo.
type docTagRepo struct {
	c store.Collection
}

// NewTagRepo constructs a TagRepo backed by the given collection.
func NewTagRepo(c store.Collection) TagRepo {
	return &docTagRepo{c: c}
}

func (r *docTagRepo) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	now := time.Now().UTC()
	tag.ID = uuid.New()
	tag.CreatedAt = now
	tag.UpdatedAt = now

	doc, err := toDoc(tag)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	if err := r.c.Insert(ctx, tag.ID, doc); err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return tag, nil
}

func (r *docTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	doc, err := r.c.FindByID(ctx, id)
	if err != nil {
		return domain.Tag{}, wrapNotFound("repo.TagRepo.GetByID", err, domain.ErrNotFound)
	}
	tag, err := fromDoc[domain.Tag](doc)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: decode: %w", err)
	}
	return tag, nil
}

func (r *docTagRepo) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	docs, err := r.c.Find(ctx, store.Filter{Eq: map[string]any{"name": name}})
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByName: %w", err)
	}
	if len(docs) == 0 {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByName: %w", domain.ErrNotFound)
	}
	tag, err := fromDoc[domain.Tag](docs[0])
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByName: decode: %w", err)
	}
	return tag, nil
}

func (r *docTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	docs, err := r.c.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	tags := make([]domain.Tag, 0, len(docs))
	for _, doc := range docs {
		tag, err := fromDoc[domain.Tag](doc)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.List: decode: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *docTagRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("repo.TagRepo.Count: %w", err)
	}
	return n, nil
}

func (r *docTagRepo) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	tag.UpdatedAt = time.Now().UTC()

	doc, err := toDoc(tag)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", err)
	}
	if _, err := r.c.UpdateByID(ctx, tag.ID, doc); err != nil {
		return domain.Tag{}, wrapNotFound("repo.TagRepo.Update", err, domain.ErrNotFound)
	}
	return tag, nil
}

func (r *docTagRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	doc, err := r.c.DeleteByID(ctx, id)
	if err != nil {
		return domain.Tag{}, wrapNotFound("repo.TagRepo.Delete", err, domain.ErrNotFound)
	}
	tag, err := fromDoc[domain.Tag](doc)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Delete: decode: %w", err)
	}
	return tag, nil
}
