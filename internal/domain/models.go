package domain

// Domain contains core models shared across the pipeline.

// Entry is a single feed item as read from a source document. Every field
// is optional; Published carries the raw date text exactly as it appeared
// in the document, with no parsing applied.
type Entry struct {
	GUID      string `json:"guid,omitempty"`
	Link      string `json:"link,omitempty"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
}
