package handler

import (
	"errors"
	"net/http"

	"github.com/dkeeling/lifelog/internal/domain"
)

// listPeople handles GET /people.
func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, people)
}

// countPeople handles GET /people/count.
func (s *Server) countPeople(w http.ResponseWriter, r *http.Request) {
	n, err := s.people.Count(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, n)
}

// getPerson handles GET /people/{id}.
func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "person")
	if !ok {
		return
	}
	p, err := s.people.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "person not found", id.String())
			return
		}
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, p)
}

// createPerson handles POST /people.
func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := s.people.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusCreated, created)
}

// updatePerson handles PUT /people/{id}.
func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "person")
	if !ok {
		return
	}
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := s.people.Update(r.Context(), id, payload)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "person not found", id.String())
			return
		}
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusOK, updated)
}

// deletePerson handles DELETE /people/{id}.
func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "person")
	if !ok {
		return
	}
	deleted, err := s.people.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "person not found", id.String())
			return
		}
		s.writeError(w, err, id.String())
		return
	}
	s.writeOK(w, http.StatusOK, deleted)
}
