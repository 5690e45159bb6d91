package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkeeling/lifelog/internal/domain"
)

// Envelope is the single wire contract for every endpoint: status is "ok" or
// "error", messages carries strings for business-rule failures or FieldError
// objects for shape failures, and data carries the entity, count, requested
// id, or the coerced payload echo depending on the outcome.
type Envelope struct {
	Status   string `json:"status"`
	Messages []any  `json:"messages"`
	Data     any    `json:"data"`
}

// writeJSON serializes an envelope. Encoding failures are logged; by then the
// status line is already on the wire, so there is nothing else to do.
func (s *Server) writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

// writeOK writes a success envelope.
func (s *Server) writeOK(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, Envelope{Status: "ok", Messages: []any{}, Data: data})
}

// writeNotFound writes the 404 envelope; data is the requested id so clients
// can correlate.
func (s *Server) writeNotFound(w http.ResponseWriter, msg, id string) {
	s.writeJSON(w, http.StatusNotFound, Envelope{Status: "error", Messages: []any{msg}, Data: id})
}

// writeError maps a service error onto the envelope. echo is the submitted
// payload, returned as data on business-rule rejections so clients can
// re-render their form state; pass nil when there is no payload (deletes).
//
// Anything outside the domain error taxonomy is an internal failure: logged,
// reported generically, payload never echoed.
func (s *Server) writeError(w http.ResponseWriter, err error, echo any) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msgs := make([]any, len(ve.Fields))
		for i, fe := range ve.Fields {
			msgs[i] = fe
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, Envelope{Status: "error", Messages: msgs, Data: ve.Echo})
		return
	}

	var de *domain.DuplicateError
	var re *domain.ReferenceError
	var ie *domain.IntegrityError
	if errors.As(err, &de) || errors.As(err, &re) || errors.As(err, &ie) {
		s.writeJSON(w, http.StatusUnprocessableEntity, Envelope{Status: "error", Messages: []any{unwrapMessage(err)}, Data: echo})
		return
	}

	s.log.Error("request failed", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, Envelope{Status: "error", Messages: []any{"An unexpected error occurred."}, Data: nil})
}

// unwrapMessage returns the business-rule message of a typed domain error —
// those errors format themselves for clients, so no prefix stripping is
// needed, but unwrapping keeps any service wrapping out of the wire text.
func unwrapMessage(err error) string {
	var de *domain.DuplicateError
	if errors.As(err, &de) {
		return de.Msg
	}
	var re *domain.ReferenceError
	if errors.As(err, &re) {
		return re.Msg
	}
	var ie *domain.IntegrityError
	if errors.As(err, &ie) {
		return ie.Error()
	}
	return err.Error()
}
