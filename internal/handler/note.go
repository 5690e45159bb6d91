package handler

import (
	"errors"
	"net/http"

	"github.com/dkeeling/lifelog/internal/domain"
)

// listNotes handles GET /notes.
func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	all, err := s.notes.List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, all)
}

// countNotes handles GET /notes/count.
func (s *Server) countNotes(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.Count(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, n)
}

// getNote handles GET /notes/{id}.
func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "note")
	if !ok {
		return
	}
	n, err := s.notes.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "note not found", id.String())
			return
		}
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, n)
}

// createNote handles POST /notes.
func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := s.notes.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusCreated, created)
}

// updateNote handles PUT /notes/{id}.
func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "note")
	if !ok {
		return
	}
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := s.notes.Update(r.Context(), id, payload)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "note not found", id.String())
			return
		}
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusOK, updated)
}

// deleteNote handles DELETE /notes/{id}.
func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "note")
	if !ok {
		return
	}
	deleted, err := s.notes.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "note not found", id.String())
			return
		}
		s.writeError(w, err, id.String())
		return
	}
	s.writeOK(w, http.StatusOK, deleted)
}
