package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/repo"
)

// ExportService assembles a full flat export of all notes with their tag and
// person references resolved to display names.
type ExportService struct {
	notes  repo.NoteRepo
	tags   repo.TagRepo
	people repo.PersonRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(notes repo.NoteRepo, tags repo.TagRepo, people repo.PersonRepo) *ExportService {
	return &ExportService{notes: notes, tags: tags, people: people}
}

// Export returns one ExportRow per note, oldest first. References that no
// longer resolve (possible if a racing delete slipped past the integrity
// check) are rendered as the raw id rather than dropped.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	tagNames := make(map[uuid.UUID]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}

	people, err := s.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	personNames := make(map[uuid.UUID]string, len(people))
	for _, p := range people {
		personNames[p.ID] = p.Name()
	}

	all, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(all))
	for _, n := range all {
		row := domain.ExportRow{
			NoteID:      n.ID.String(),
			Type:        lookupName(tagNames, n.Type),
			Date:        n.Date,
			Title:       n.Title,
			Description: n.Description,
			Place:       n.Place,
			Tags:        []string{},
			People:      []string{},
		}
		for _, id := range n.Tags {
			row.Tags = append(row.Tags, lookupName(tagNames, id))
		}
		for _, id := range n.People {
			row.People = append(row.People, lookupName(personNames, id))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// lookupName resolves an id to its display name, falling back to the raw id.
func lookupName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id.String()
}
