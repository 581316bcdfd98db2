package domain

import (
	"time"
	"unicode/utf8"
)

// Document is the plain text extracted from one uploaded file.
// It is immutable once created and lives until its session is reset or re-uploaded.
type Document struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Content   string    `json:"-"`
	Size      int       `json:"size"` // Size of the raw upload in bytes
	CreatedAt time.Time `json:"created_at"`
}

// Length returns the document length in characters.
func (d *Document) Length() int {
	return utf8.RuneCountInString(d.Content)
}

// Chunk is a bounded contiguous slice of document text.
// Offsets are character (rune) positions in the document, half-open.
type Chunk struct {
	ID           int    `json:"id"` // Sequence index within the document
	Text         string `json:"text"`
	SourceOffset int    `json:"source_offset"`
	EndOffset    int    `json:"end_offset"`
}

// Len returns the chunk span in characters
func (c Chunk) Len() int {
	return c.EndOffset - c.SourceOffset
}

// UploadResult describes a successfully indexed document
type UploadResult struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	Dimensions int    `json:"dimensions"`
	Message    string `json:"message" example:"Document report.pdf processed: 42 chunks indexed"`
}
