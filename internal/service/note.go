package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/notes"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/taxonomy"
	"github.com/dkeeling/lifelog/internal/validate"
)

// NoteService implements business logic for Note operations. The note's type
// reference selects a subtype schema from the registry; base fields, subtype
// fields and the metrics array are validated together before any reference
// resolution or persistence happens.
type NoteService struct {
	notes    repo.NoteRepo
	people   repo.PersonRepo
	graph    *taxonomy.Graph
	registry *notes.Registry
}

// NewNoteService constructs a NoteService.
func NewNoteService(notesRepo repo.NoteRepo, people repo.PersonRepo, graph *taxonomy.Graph, registry *notes.Registry) *NoteService {
	return &NoteService{notes: notesRepo, people: people, graph: graph, registry: registry}
}

// Create validates the payload against the base schema plus the subtype
// schema selected by the type reference, rejects duplicate (date, title)
// pairs, resolves every tag/person/workout reference, and persists.
func (s *NoteService) Create(ctx context.Context, payload map[string]any) (domain.Note, error) {
	return s.save(ctx, uuid.Nil, payload)
}

// GetByID returns a single note by ID.
func (s *NoteService) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.GetByID: %w", err)
	}
	return n, nil
}

// List returns all notes. Always returns a non-nil slice.
func (s *NoteService) List(ctx context.Context) ([]domain.Note, error) {
	all, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.NoteService.List: %w", err)
	}
	if all == nil {
		return []domain.Note{}, nil
	}
	return all, nil
}

// Count returns the total number of notes.
func (s *NoteService) Count(ctx context.Context) (int64, error) {
	n, err := s.notes.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.NoteService.Count: %w", err)
	}
	return n, nil
}

// Update validates and replaces an existing note.
func (s *NoteService) Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Note, error) {
	if _, err := s.notes.GetByID(ctx, id); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Update: %w", err)
	}
	return s.save(ctx, id, payload)
}

// Delete removes a note by ID. Notes are referenced by nothing, so no
// integrity probe is needed.
func (s *NoteService) Delete(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	deleted, err := s.notes.Delete(ctx, id)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Delete: %w", err)
	}
	return deleted, nil
}

// save is the shared create/update pipeline. self is uuid.Nil on create; on
// update it identifies the note being replaced so the duplicate check can
// exclude it and CreatedAt can be preserved.
func (s *NoteService) save(ctx context.Context, self uuid.UUID, payload map[string]any) (domain.Note, error) {
	// Stage 1: shape validation. The subtype schema is selected by the type
	// reference; when the type cannot be resolved the base errors still
	// surface first and the bad reference is reported afterwards.
	fieldErrs, normalized := validate.Apply(notes.BaseFields(), payload)

	typeRef := getString(normalized, "type")
	var (
		typeTag     domain.Tag
		typeInvalid bool
		schema      notes.Schema
		haveSchema  bool
	)
	if typeRef != "" {
		var err error
		typeTag, err = s.graph.Resolve(ctx, typeRef, domain.RoleType)
		switch {
		case err == nil:
			schema, haveSchema = s.registry.Lookup(typeTag.Name)
		case errors.Is(err, domain.ErrNotFound) || errors.Is(err, taxonomy.ErrRoleMismatch):
			typeInvalid = true
		default:
			return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
		}
	}

	if haveSchema {
		variantErrs, variantNorm := validate.Apply(schema.Fields, normalized)
		fieldErrs = append(fieldErrs, variantErrs...)
		normalized = variantNorm

		if schema.Metrics != notes.MetricsNone {
			metricErrs, coerced := notes.ValidateMetrics(schema.Metrics, normalized["metrics"])
			fieldErrs = append(fieldErrs, metricErrs...)
			if coerced != nil {
				normalized["metrics"] = coerced
			}
		}
	}

	if len(fieldErrs) > 0 {
		return domain.Note{}, &domain.ValidationError{Fields: fieldErrs, Echo: normalized}
	}
	if typeInvalid {
		return domain.Note{}, domain.NewReferenceError("type", []string{typeRef})
	}

	// Stage 2: sibling duplicate on (date, title).
	date, title := getString(normalized, "date"), getString(normalized, "title")
	if err := s.checkDuplicateDateTitle(ctx, date, title, self); err != nil {
		return domain.Note{}, err
	}

	// Stage 3: reference resolution — tags, people, workout.
	tagList, invalid, err := s.graph.ResolveMany(ctx, getStringSlice(normalized, "tags"), domain.RoleTag)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
	}
	if len(invalid) > 0 {
		return domain.Note{}, domain.NewReferenceError("tag(s)", invalid)
	}

	personIDs, err := s.resolvePeople(ctx, getStringSlice(normalized, "people"))
	if err != nil {
		return domain.Note{}, err
	}

	if haveSchema && schema.TypeName == "Workout" {
		workoutRef := getString(normalized, "workout")
		workoutTag, err := s.graph.Resolve(ctx, workoutRef, domain.RoleWorkout)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, taxonomy.ErrRoleMismatch) {
				return domain.Note{}, domain.NewReferenceError("workout", []string{workoutRef})
			}
			return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
		}
		normalized["workout"] = workoutTag.ID.String()
	}

	// Stage 4: persist.
	note := noteFromPayload(normalized)
	note.Type = typeTag.ID
	note.Tags = tagIDs(tagList)
	note.People = personIDs

	if self == uuid.Nil {
		created, err := s.notes.Create(ctx, note)
		if err != nil {
			return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
		}
		return created, nil
	}

	existing, err := s.notes.GetByID(ctx, self)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
	}
	note.ID = self
	note.CreatedAt = existing.CreatedAt
	updated, err := s.notes.Update(ctx, note)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.save: %w", err)
	}
	return updated, nil
}

// checkDuplicateDateTitle rejects a (date, title) pair already carried by a
// different note. Check-then-act against persisted state.
func (s *NoteService) checkDuplicateDateTitle(ctx context.Context, date, title string, self uuid.UUID) error {
	existing, err := s.notes.FindByDateTitle(ctx, date, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.NoteService.checkDuplicateDateTitle: %w", err)
	}
	if existing.ID == self {
		return nil
	}
	return &domain.DuplicateError{
		Msg: fmt.Sprintf("A note with date '%s' and title '%s' already exists.", date, title),
	}
}

// resolvePeople resolves person references (uuid or display name) to
// canonical ids, batching every offending identifier.
func (s *NoteService) resolvePeople(ctx context.Context, refs []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(refs))
	var invalid []string
	for _, ref := range refs {
		var (
			p   domain.Person
			err error
		)
		if id, parseErr := uuid.Parse(ref); parseErr == nil {
			p, err = s.people.GetByID(ctx, id)
		} else {
			p, err = s.people.FindByName(ctx, ref)
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				invalid = append(invalid, ref)
				continue
			}
			return nil, fmt.Errorf("service.NoteService.resolvePeople: %w", err)
		}
		ids = append(ids, p.ID)
	}
	if len(invalid) > 0 {
		return nil, domain.NewReferenceError("person(s)", invalid)
	}
	return ids, nil
}

// noteFromPayload builds a domain.Note from a validated, coerced payload.
// Type, Tags and People are filled in after reference resolution; every
// non-base key lands in Fields and is persisted as-is.
func noteFromPayload(p map[string]any) domain.Note {
	note := domain.Note{
		Date:        getString(p, "date"),
		Title:       getString(p, "title"),
		Description: getString(p, "description"),
		Place:       getString(p, "place"),
		PhotoAlbum:  getString(p, "photoAlbum"),
		Tags:        []uuid.UUID{},
		People:      []uuid.UUID{},
	}
	fields := map[string]any{}
	for k, v := range p {
		switch k {
		case "id", "type", "tags", "date", "title", "description", "people",
			"place", "photoAlbum", "createdAt", "updatedAt":
			continue
		}
		fields[k] = v
	}
	if len(fields) > 0 {
		note.Fields = fields
	}
	return note
}

// tagIDs projects resolved tags onto their canonical ids.
func tagIDs(tags []domain.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
