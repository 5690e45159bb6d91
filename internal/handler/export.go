package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/dkeeling/lifelog/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV
// export.
var csvHeaders = []string{
	"note_id", "type", "date", "title", "description", "place", "tags", "people",
}

// getExport handles GET /export: all notes as a flat table with tag and
// person references resolved to names. ?format=csv selects CSV output;
// the default is the JSON envelope.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		s.writeCSV(w, rows)
		return
	}
	s.writeOK(w, http.StatusOK, rows)
}

// writeCSV encodes export rows as CSV. Tags and people within a row are
// pipe-separated ("|") to keep each note on a single CSV line.
func (s *Server) writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write([]string{
			r.NoteID, r.Type, r.Date, r.Title, r.Description, r.Place,
			strings.Join(r.Tags, "|"), strings.Join(r.People, "|"),
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Error("failed to write csv export", "error", err)
	}
}
