package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
)

// IntegrityChecker scans every collection that could hold a reference to a
// tag or person about to be updated or deleted. The store has no foreign
// keys, so this pre-mutation probe is the only thing standing between an
// admin edit and silently orphaned references.
//
// The check is deliberately conservative: it runs for every update, not just
// updates that touch role flags or identity fields.
type IntegrityChecker struct {
	notes  repo.NoteRepo
	people repo.PersonRepo
}

// NewIntegrityChecker constructs an IntegrityChecker over the referencing
// collections.
func NewIntegrityChecker(notes repo.NoteRepo, people repo.PersonRepo) *IntegrityChecker {
	return &IntegrityChecker{notes: notes, people: people}
}

// CheckTag probes notes.type, notes.tags, notes.workout and people.tags for
// references to the tag. When any probe is nonzero it returns a
// domain.IntegrityError enumerating all nonzero probes, in probe order.
// verb is "update" or "delete" and only affects the error message.
func (c *IntegrityChecker) CheckTag(ctx context.Context, verb string, id uuid.UUID) error {
	probes := []struct {
		collection string
		field      string
		count      func(context.Context, uuid.UUID) (int64, error)
	}{
		{"notes", "type", c.notes.CountByType},
		{"notes", "tags", c.notes.CountByTag},
		{"notes", "workout", c.notes.CountByWorkout},
		{"people", "tags", c.people.CountByTag},
	}

	var refs []domain.BlockingRef
	for _, p := range probes {
		n, err := p.count(ctx, id)
		if err != nil {
			return fmt.Errorf("service.IntegrityChecker.CheckTag: %w", err)
		}
		if n > 0 {
			refs = append(refs, domain.BlockingRef{Collection: p.collection, Field: p.field, Count: n})
		}
	}
	if len(refs) > 0 {
		return &domain.IntegrityError{Verb: verb, Kind: "tag", ID: id.String(), Refs: refs}
	}
	return nil
}

// CheckPerson probes notes.people for references to the person.
func (c *IntegrityChecker) CheckPerson(ctx context.Context, verb string, id uuid.UUID) error {
	n, err := c.notes.CountByPerson(ctx, id)
	if err != nil {
		return fmt.Errorf("service.IntegrityChecker.CheckPerson: %w", err)
	}
	if n > 0 {
		return &domain.IntegrityError{
			Verb: verb, Kind: "person", ID: id.String(),
			Refs: []domain.BlockingRef{{Collection: "notes", Field: "people", Count: n}},
		}
	}
	return nil
}
