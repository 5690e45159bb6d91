package domain

// ExportRow is a single row in the full-data export: one row per note, with
// tag and person references resolved to their display names. It is a flat,
// denormalized view suitable for CSV as well as JSON.
//
// Tags and People are ordered as stored on the note. Callers that need a
// joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	NoteID      string   `json:"noteId"`
	Type        string   `json:"type"` // type tag name, e.g. "Book"
	Date        string   `json:"date"` // "2006-01-02"
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Place       string   `json:"place,omitempty"`
	Tags        []string `json:"tags"`
	People      []string `json:"people"`
}
