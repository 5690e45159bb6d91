// Package service contains the business logic for the Lifelog API.
// Services run the mutation pipeline the handlers rely on: field validation,
// sibling-duplicate detection, reference resolution, referential-integrity
// checks, then the persistence write. A rejection at any stage aborts all
// later stages — nothing is written after a reject decision.
//
// Duplicate and integrity checks are read-then-write sequences against the
// store; two racing writers can both pass a check whose invariant the other
// is about to violate. The store offers no transactions, so this gap is
// accepted and documented rather than papered over.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/validate"
)

// TagService implements business logic for Tag operations.
type TagService struct {
	tags      repo.TagRepo
	integrity *IntegrityChecker
}

// NewTagService constructs a TagService backed by the provided repo and
// integrity checker.
func NewTagService(tags repo.TagRepo, integrity *IntegrityChecker) *TagService {
	return &TagService{tags: tags, integrity: integrity}
}

// tagFields is the declarative validation schema for tag payloads.
func tagFields() []validate.Field {
	return []validate.Field{
		{Param: "name", Rules: []validate.Rule{
			validate.Required("A name is required."),
			validate.StrLen(1, 25, "The name must be between 1 and 25 characters."),
		}},
		{Param: "description", Rules: []validate.Rule{
			validate.String("The description must be a string."),
		}},
		{Param: "isType", Rules: []validate.Rule{validate.Bool("isType")}},
		{Param: "isTag", Rules: []validate.Rule{validate.Bool("isTag")}},
		{Param: "isWorkout", Rules: []validate.Rule{validate.Bool("isWorkout")}},
		{Param: "isPerson", Rules: []validate.Rule{validate.Bool("isPerson")}},
	}
}

// Create validates the payload, rejects duplicate names, and persists a new
// tag.
func (s *TagService) Create(ctx context.Context, payload map[string]any) (domain.Tag, error) {
	fieldErrs, normalized := validate.Apply(tagFields(), payload)
	if len(fieldErrs) > 0 {
		return domain.Tag{}, &domain.ValidationError{Fields: fieldErrs, Echo: normalized}
	}

	name := getString(normalized, "name")
	if err := s.checkDuplicateName(ctx, name, uuid.Nil); err != nil {
		return domain.Tag{}, err
	}

	created, err := s.tags.Create(ctx, tagFromPayload(normalized))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single tag by ID.
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetByID: %w", err)
	}
	return tag, nil
}

// List returns all tags. Always returns a non-nil slice.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// Count returns the total number of tags.
func (s *TagService) Count(ctx context.Context) (int64, error) {
	n, err := s.tags.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.TagService.Count: %w", err)
	}
	return n, nil
}

// Update validates the payload and replaces the stored tag. The update is
// blocked while any note or person still references the tag — role flags
// gate what may reference it, so editing a referenced tag could invalidate
// references already persisted elsewhere.
func (s *TagService) Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Tag, error) {
	existing, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}

	fieldErrs, normalized := validate.Apply(tagFields(), payload)
	if len(fieldErrs) > 0 {
		return domain.Tag{}, &domain.ValidationError{Fields: fieldErrs, Echo: normalized}
	}

	if err := s.checkDuplicateName(ctx, getString(normalized, "name"), id); err != nil {
		return domain.Tag{}, err
	}
	if err := s.integrity.CheckTag(ctx, "update", id); err != nil {
		return domain.Tag{}, err
	}

	tag := tagFromPayload(normalized)
	tag.ID = id
	tag.CreatedAt = existing.CreatedAt

	updated, err := s.tags.Update(ctx, tag)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a tag. Blocked while anything still references it.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	if _, err := s.tags.GetByID(ctx, id); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Delete: %w", err)
	}
	if err := s.integrity.CheckTag(ctx, "delete", id); err != nil {
		return domain.Tag{}, err
	}
	deleted, err := s.tags.Delete(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return deleted, nil
}

// checkDuplicateName rejects a name already carried by a different tag.
// self is uuid.Nil on create. This is a check-then-act sequence against
// persisted state, not an atomic constraint.
func (s *TagService) checkDuplicateName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.tags.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.TagService.checkDuplicateName: %w", err)
	}
	if existing.ID == self {
		return nil
	}
	return &domain.DuplicateError{Msg: fmt.Sprintf("A tag called '%s' already exists.", name)}
}

// tagFromPayload builds a domain.Tag from a validated, coerced payload.
func tagFromPayload(p map[string]any) domain.Tag {
	return domain.Tag{
		Name:        getString(p, "name"),
		Description: getString(p, "description"),
		IsType:      getBool(p, "isType"),
		IsTag:       getBool(p, "isTag"),
		IsWorkout:   getBool(p, "isWorkout"),
		IsPerson:    getBool(p, "isPerson"),
	}
}
