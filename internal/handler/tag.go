package handler

import (
	"errors"
	"net/http"

	"github.com/dkeeling/lifelog/internal/domain"
)

// listTags handles GET /tags.
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, tags)
}

// countTags handles GET /tags/count.
func (s *Server) countTags(w http.ResponseWriter, r *http.Request) {
	n, err := s.tags.Count(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, n)
}

// getTag handles GET /tags/{id}.
func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "tag")
	if !ok {
		return
	}
	tag, err := s.tags.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "tag not found", id.String())
			return
		}
		s.writeError(w, err, nil)
		return
	}
	s.writeOK(w, http.StatusOK, tag)
}

// createTag handles POST /tags.
func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := s.tags.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusCreated, created)
}

// updateTag handles PUT /tags/{id}.
func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "tag")
	if !ok {
		return
	}
	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := s.tags.Update(r.Context(), id, payload)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "tag not found", id.String())
			return
		}
		s.writeError(w, err, payload)
		return
	}
	s.writeOK(w, http.StatusOK, updated)
}

// deleteTag handles DELETE /tags/{id}.
func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r, "tag")
	if !ok {
		return
	}
	deleted, err := s.tags.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeNotFound(w, "tag not found", id.String())
			return
		}
		s.writeError(w, err, id.String())
		return
	}
	s.writeOK(w, http.StatusOK, deleted)
}
