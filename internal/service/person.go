package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
	"github.com/dkeeling/lifelog/internal/taxonomy"
	"github.com/dkeeling/lifelog/internal/validate"
)

// PersonService implements business logic for Person operations.
// It holds the taxonomy graph because every tag attached to a person must
// carry the person role.
type PersonService struct {
	people    repo.PersonRepo
	graph     *taxonomy.Graph
	integrity *IntegrityChecker
}

// NewPersonService constructs a PersonService.
func NewPersonService(people repo.PersonRepo, graph *taxonomy.Graph, integrity *IntegrityChecker) *PersonService {
	return &PersonService{people: people, graph: graph, integrity: integrity}
}

// personFields is the declarative validation schema for person payloads.
func personFields() []validate.Field {
	return []validate.Field{
		{Param: "firstName", Rules: []validate.Rule{
			validate.Required("A first name is required."),
			validate.StrLen(1, 50, "The first name must be between 1 and 50 characters."),
		}},
		{Param: "middleName", Rules: []validate.Rule{
			validate.String("The middle name must be a string."),
		}},
		{Param: "lastName", Rules: []validate.Rule{
			validate.String("The last name must be a string."),
		}},
		{Param: "preferredName", Rules: []validate.Rule{
			validate.String("The preferred name must be a string."),
		}},
		{Param: "birthdate", Rules: []validate.Rule{
			validate.Date("A valid birthdate is required."),
		}},
		{Param: "googlePhotoUrl", Rules: []validate.Rule{
			validate.String("The google photo URL must be a string."),
		}},
		{Param: "picasaContactId", Rules: []validate.Rule{
			validate.String("The Picasa contact id must be a string."),
		}},
		{Param: "tags", Rules: []validate.Rule{
			validate.StringArray("The tags must be supplied as an array."),
		}},
	}
}

// personNoteFields validates one embedded {date, note} remark.
var personNoteFields = []validate.Field{
	{Param: "date", Rules: []validate.Rule{
		validate.Required("A date is required."),
		validate.Date("A valid date is required."),
	}},
	{Param: "note", Rules: []validate.Rule{
		validate.Required("A note is required."),
		validate.String("The note must be a string."),
	}},
}

// personPhotoFields validates one embedded photo reference.
var personPhotoFields = []validate.Field{
	{Param: "description", Rules: []validate.Rule{
		validate.String("The description must be a string."),
	}},
	{Param: "image", Rules: []validate.Rule{
		validate.Required("An image is required."),
		validate.String("The image must be a string."),
	}},
}

// validatePerson runs the scalar schema plus the embedded notes and photos
// arrays, accumulating everything into one error list.
func validatePerson(payload map[string]any) ([]domain.FieldError, map[string]any) {
	errs, normalized := validate.Apply(personFields(), payload)

	for _, embedded := range []struct {
		param  string
		fields []validate.Field
	}{
		{"notes", personNoteFields},
		{"photos", personPhotoFields},
	} {
		v, ok := normalized[embedded.param]
		if !ok || v == nil {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			errs = append(errs, domain.NewFieldError(
				embedded.param, fmt.Sprintf("The %s must be supplied as an array.", embedded.param), v))
			continue
		}
		coerced := make([]any, len(arr))
		for i, elem := range arr {
			m, ok := elem.(map[string]any)
			if !ok {
				errs = append(errs, domain.NewFieldError(
					fmt.Sprintf("%s[%d]", embedded.param, i), "Each entry must be an object.", elem))
				coerced[i] = elem
				continue
			}
			elemErrs, elemNorm := validate.Apply(embedded.fields, m)
			for _, fe := range elemErrs {
				fe.Param = fmt.Sprintf("%s[%d].%s", embedded.param, i, fe.Param)
				errs = append(errs, fe)
			}
			coerced[i] = elemNorm
		}
		normalized[embedded.param] = coerced
	}
	return errs, normalized
}

// Create validates the payload, rejects duplicate name triples, resolves
// person-role tags, and persists a new person.
func (s *PersonService) Create(ctx context.Context, payload map[string]any) (domain.Person, error) {
	fieldErrs, normalized := validatePerson(payload)
	if len(fieldErrs) > 0 {
		return domain.Person{}, &domain.ValidationError{Fields: fieldErrs, Echo: normalized}
	}

	candidate := personFromPayload(normalized)
	if err := s.checkDuplicateTriple(ctx, candidate, uuid.Nil); err != nil {
		return domain.Person{}, err
	}

	tagIDs, err := s.resolveTags(ctx, getStringSlice(normalized, "tags"))
	if err != nil {
		return domain.Person{}, err
	}
	candidate.Tags = tagIDs

	created, err := s.people.Create(ctx, candidate)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single person by ID.
func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error) {
	p, err := s.people.GetByID(ctx, id)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.GetByID: %w", err)
	}
	return p, nil
}

// List returns all people. Always returns a non-nil slice.
func (s *PersonService) List(ctx context.Context) ([]domain.Person, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PersonService.List: %w", err)
	}
	if people == nil {
		return []domain.Person{}, nil
	}
	return people, nil
}

// Count returns the total number of people.
func (s *PersonService) Count(ctx context.Context) (int64, error) {
	n, err := s.people.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.PersonService.Count: %w", err)
	}
	return n, nil
}

// Update validates the payload and replaces the stored person. Blocked while
// any note still references the person.
func (s *PersonService) Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Person, error) {
	existing, err := s.people.GetByID(ctx, id)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Update: %w", err)
	}

	fieldErrs, normalized := validatePerson(payload)
	if len(fieldErrs) > 0 {
		return domain.Person{}, &domain.ValidationError{Fields: fieldErrs, Echo: normalized}
	}

	candidate := personFromPayload(normalized)
	if err := s.checkDuplicateTriple(ctx, candidate, id); err != nil {
		return domain.Person{}, err
	}

	tagIDs, err := s.resolveTags(ctx, getStringSlice(normalized, "tags"))
	if err != nil {
		return domain.Person{}, err
	}
	candidate.Tags = tagIDs

	if err := s.integrity.CheckPerson(ctx, "update", id); err != nil {
		return domain.Person{}, err
	}

	candidate.ID = id
	candidate.CreatedAt = existing.CreatedAt

	updated, err := s.people.Update(ctx, candidate)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a person. Blocked while any note still references them.
func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) (domain.Person, error) {
	if _, err := s.people.GetByID(ctx, id); err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Delete: %w", err)
	}
	if err := s.integrity.CheckPerson(ctx, "delete", id); err != nil {
		return domain.Person{}, err
	}
	deleted, err := s.people.Delete(ctx, id)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Delete: %w", err)
	}
	return deleted, nil
}

// checkDuplicateTriple rejects a (first, middle, last) name triple already
// carried by a different person. self is uuid.Nil on create.
func (s *PersonService) checkDuplicateTriple(ctx context.Context, p domain.Person, self uuid.UUID) error {
	existing, err := s.people.FindByNameTriple(ctx, p.FirstName, p.MiddleName, p.LastName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.PersonService.checkDuplicateTriple: %w", err)
	}
	if existing.ID == self {
		return nil
	}
	full := strings.Join(nonEmpty(p.FirstName, p.MiddleName, p.LastName), " ")
	return &domain.DuplicateError{Msg: fmt.Sprintf("A person called '%s' already exists.", full)}
}

// resolveTags resolves person-tag references to canonical ids, batching every
// offending identifier into a single ReferenceError.
func (s *PersonService) resolveTags(ctx context.Context, refs []string) ([]uuid.UUID, error) {
	tags, invalid, err := s.graph.ResolveMany(ctx, refs, domain.RolePerson)
	if err != nil {
		return nil, fmt.Errorf("service.PersonService.resolveTags: %w", err)
	}
	if len(invalid) > 0 {
		return nil, domain.NewReferenceError("tag(s)", invalid)
	}
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids, nil
}

// personFromPayload builds a domain.Person from a validated, coerced payload.
// Tags are filled in after reference resolution.
func personFromPayload(p map[string]any) domain.Person {
	person := domain.Person{
		FirstName:       getString(p, "firstName"),
		MiddleName:      getString(p, "middleName"),
		LastName:        getString(p, "lastName"),
		PreferredName:   getString(p, "preferredName"),
		Birthdate:       getString(p, "birthdate"),
		GooglePhotoURL:  getString(p, "googlePhotoUrl"),
		PicasaContactID: getString(p, "picasaContactId"),
		Tags:            []uuid.UUID{},
		Notes:           []domain.PersonNote{},
		Photos:          []domain.PersonPhoto{},
	}
	if arr, ok := p["notes"].([]any); ok {
		for _, elem := range arr {
			if m, ok := elem.(map[string]any); ok {
				person.Notes = append(person.Notes, domain.PersonNote{
					Date: getString(m, "date"),
					Note: getString(m, "note"),
				})
			}
		}
	}
	if arr, ok := p["photos"].([]any); ok {
		for _, elem := range arr {
			if m, ok := elem.(map[string]any); ok {
				person.Photos = append(person.Photos, domain.PersonPhoto{
					Description: getString(m, "description"),
					Image:       getString(m, "image"),
				})
			}
		}
	}
	return person
}

// nonEmpty filters out empty strings, preserving order.
func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
