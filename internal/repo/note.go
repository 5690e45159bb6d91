package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/store"
)

// NoteRepo defines the persistence operations for Notes.
type NoteRepo interface {
	// Create assigns an id and timestamps, persists the note, and returns it.
	Create(ctx context.Context, n domain.Note) (domain.Note, error)

	// GetByID returns a single note, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error)

	// FindByDateTitle returns the note with the exact (date, title) pair, or
	// domain.ErrNotFound.
	FindByDateTitle(ctx context.Context, date, title string) (domain.Note, error)

	// List returns all notes, oldest first.
	List(ctx context.Context) ([]domain.Note, error)

	// Count returns the total number of notes.
	Count(ctx context.Context) (int64, error)

	// Update replaces the stored note, refreshing UpdatedAt.
	Update(ctx context.Context, n domain.Note) (domain.Note, error)

	// Delete removes and returns the note, or domain.ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) (domain.Note, error)

	// CountByType returns how many notes use tagID as their type.
	CountByType(ctx context.Context, tagID uuid.UUID) (int64, error)

	// CountByTag returns how many notes reference tagID in their tags array.
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)

	// CountByWorkout returns how many notes use tagID as their workout.
	CountByWorkout(ctx context.Context, tagID uuid.UUID) (int64, error)

	// CountByPerson returns how many notes reference personID in their
	// people array.
	CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error)
}

// docNoteRepo is the document-store implementation of NoteRepo.
type docNoteRepo struct {
	c store.Collection
}

// NewNoteRepo constructs a NoteRepo backed by the given collection.
func NewNoteRepo(c store.Collection) NoteRepo {
	return &docNoteRepo{c: c}
}

func (r *docNoteRepo) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	now := time.Now().UTC()
	n.ID = uuid.New()
	n.CreatedAt = now
	n.UpdatedAt = now

	doc, err := toDoc(n)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Create: %w", err)
	}
	if err := r.c.Insert(ctx, n.ID, doc); err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Create: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	doc, err := r.c.FindByID(ctx, id)
	if err != nil {
		return domain.Note{}, wrapNotFound("repo.NoteRepo.GetByID", err, domain.ErrNotFound)
	}
	n, err := fromDoc[domain.Note](doc)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.GetByID: decode: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) FindByDateTitle(ctx context.Context, date, title string) (domain.Note, error) {
	docs, err := r.c.Find(ctx, store.Filter{Eq: map[string]any{"date": date, "title": title}})
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.FindByDateTitle: %w", err)
	}
	if len(docs) == 0 {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.FindByDateTitle: %w", domain.ErrNotFound)
	}
	n, err := fromDoc[domain.Note](docs[0])
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.FindByDateTitle: decode: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) List(ctx context.Context) ([]domain.Note, error) {
	docs, err := r.c.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.List: %w", err)
	}
	out := make([]domain.Note, 0, len(docs))
	for _, doc := range docs {
		n, err := fromDoc[domain.Note](doc)
		if err != nil {
			return nil, fmt.Errorf("repo.NoteRepo.List: decode: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *docNoteRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("repo.NoteRepo.Count: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) Update(ctx context.Context, n domain.Note) (domain.Note, error) {
	n.UpdatedAt = time.Now().UTC()

	doc, err := toDoc(n)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Update: %w", err)
	}
	if _, err := r.c.UpdateByID(ctx, n.ID, doc); err != nil {
		return domain.Note{}, wrapNotFound("repo.NoteRepo.Update", err, domain.ErrNotFound)
	}
	return n, nil
}

func (r *docNoteRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	doc, err := r.c.DeleteByID(ctx, id)
	if err != nil {
		return domain.Note{}, wrapNotFound("repo.NoteRepo.Delete", err, domain.ErrNotFound)
	}
	n, err := fromDoc[domain.Note](doc)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Delete: decode: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) CountByType(ctx context.Context, tagID uuid.UUID) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{Eq: map[string]any{"type": tagID.String()}})
	if err != nil {
		return 0, fmt.Errorf("repo.NoteRepo.CountByType: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{Has: map[string]string{"tags": tagID.String()}})
	if err != nil {
		return 0, fmt.Errorf("repo.NoteRepo.CountByTag: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) CountByWorkout(ctx context.Context, tagID uuid.UUID) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{Eq: map[string]any{"workout": tagID.String()}})
	if err != nil {
		return 0, fmt.Errorf("repo.NoteRepo.CountByWorkout: %w", err)
	}
	return n, nil
}

func (r *docNoteRepo) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	n, err := r.c.Count(ctx, store.Filter{Has: map[string]string{"people": personID.String()}})
	if err != nil {
		return 0, fmt.Errorf("repo.NoteRepo.CountByPerson: %w", err)
	}
	return n, nil
}
