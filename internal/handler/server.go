// Package handler implements the HTTP handlers for the Lifelog API.
// All handlers are methods on Server. Methods are split into entity-specific
// files (tag.go, person.go, note.go, export.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkeeling/lifelog/internal/domain"
)

// TagServicer defines the business operations the tag handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or service layer.
type TagServicer interface {
	Create(ctx context.Context, payload map[string]any) (domain.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

// PersonServicer defines the business operations the person handlers depend on.
type PersonServicer interface {
	Create(ctx context.Context, payload map[string]any) (domain.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error)
	List(ctx context.Context) ([]domain.Person, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Person, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Person, error)
}

// NoteServicer defines the business operations the note handlers depend on.
type NoteServicer interface {
	Create(ctx context.Context, payload map[string]any) (domain.Note, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error)
	List(ctx context.Context) ([]domain.Note, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, payload map[string]any) (domain.Note, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Note, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the handlers' dependencies. Wire it in main.go and mount
// Routes() on the root router.
type Server struct {
	tags   TagServicer
	people PersonServicer
	notes  NoteServicer
	export ExportServicer
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tags TagServicer, people PersonServicer, notes NoteServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{tags: tags, people: people, notes: notes, export: export, log: log}
}

// Routes builds the REST surface: list/count/get/create/update/delete per
// collection, plus the export and health endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.listTags)
		r.Get("/count", s.countTags)
		r.Post("/", s.createTag)
		r.Get("/{id}", s.getTag)
		r.Put("/{id}", s.updateTag)
		r.Delete("/{id}", s.deleteTag)
	})

	r.Route("/people", func(r chi.Router) {
		r.Get("/", s.listPeople)
		r.Get("/count", s.countPeople)
		r.Post("/", s.createPerson)
		r.Get("/{id}", s.getPerson)
		r.Put("/{id}", s.updatePerson)
		r.Delete("/{id}", s.deletePerson)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", s.listNotes)
		r.Get("/count", s.countNotes)
		r.Post("/", s.createNote)
		r.Get("/{id}", s.getNote)
		r.Put("/{id}", s.updateNote)
		r.Delete("/{id}", s.deleteNote)
	})

	r.Get("/export", s.getExport)
	r.Get("/healthz", s.getHealth)

	return r
}

// getHealth handles GET /healthz: HTTP 200 with an ok envelope when the
// server is running.
func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w, http.StatusOK, "healthy")
}

// decodePayload reads the request body into an untyped map. The validation
// engine, not the decoder, is responsible for field types — only malformed
// JSON is rejected here.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, Envelope{
			Status:   "error",
			Messages: []any{"The request body must be a valid JSON object."},
			Data:     nil,
		})
		return nil, false
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, true
}

// parseID extracts and parses the {id} route parameter. Unparseable ids are
// reported as not-found: no document can ever exist under them.
func (s *Server) parseID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeNotFound(w, kind+" not found", raw)
		return uuid.Nil, false
	}
	return id, true
}
