// Package taxonomy resolves tag references and checks role consistency.
// A reference may be a UUID (the canonical form) or a tag name (accepted as a
// boundary convenience on both create and update paths); either way the
// resolved tag must carry the role the caller expects.
package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
)

// ErrRoleMismatch is returned by Resolve when the referenced tag exists but
// does not carry the required role flag.
var ErrRoleMismatch = errors.New("tag does not carry required role")

// Graph answers "is this tag usable as a note type / label / workout /
// person-tag" questions against the tags collection.
type Graph struct {
	tags repo.TagRepo
}

// New constructs a Graph backed by the provided TagRepo.
func New(tags repo.TagRepo) *Graph {
	return &Graph{tags: tags}
}

// Resolve looks up a single tag by id or name and verifies it carries role.
// Returns domain.ErrNotFound for unresolvable references and ErrRoleMismatch
// for tags lacking the role flag; any other error is an infrastructure
// failure.
func (g *Graph) Resolve(ctx context.Context, ref string, role domain.Role) (domain.Tag, error) {
	var (
		tag domain.Tag
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		tag, err = g.tags.GetByID(ctx, id)
	} else {
		tag, err = g.tags.GetByName(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Tag{}, fmt.Errorf("taxonomy.Resolve %q: %w", ref, domain.ErrNotFound)
		}
		return domain.Tag{}, fmt.Errorf("taxonomy.Resolve %q: %w", ref, err)
	}
	if !tag.HasRole(role) {
		return domain.Tag{}, fmt.Errorf("taxonomy.Resolve %q as %s: %w", ref, role, ErrRoleMismatch)
	}
	return tag, nil
}

// ResolveMany resolves every reference against the required role. Resolved
// tags and offending identifiers are both returned in input order; the caller
// receives the full set of failures in one batch, never just the first.
// The error return is reserved for infrastructure failures.
func (g *Graph) ResolveMany(ctx context.Context, refs []string, role domain.Role) ([]domain.Tag, []string, error) {
	tags := make([]domain.Tag, 0, len(refs))
	var invalid []string
	for _, ref := range refs {
		tag, err := g.Resolve(ctx, ref, role)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, ErrRoleMismatch) {
				invalid = append(invalid, ref)
				continue
			}
			return nil, nil, err
		}
		tags = append(tags, tag)
	}
	return tags, invalid, nil
}
