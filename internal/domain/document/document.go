package document

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/topix/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTextSize is the maximum document text size in bytes. Community posts
// and chat messages are short; anything larger is a caller bug.
const MaxTextSize = 65536 // 64KB

// Document is a short text document owned by an external collaborator
// (immutable value object). The engine never mutates it.
//
// A document carries text (batch path), an embedding (incremental path),
// or both when the caller already vectorized it.
type Document struct {
	id        string
	text      string
	embedding []float32
}

// New validates and creates a text Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Text: non-empty, max 64KB.
func New(id, text string) (Document, error) {
	if err := validateID(id); err != nil {
		return Document{}, err
	}
	if text == "" {
		return Document{}, fmt.Errorf("%w: text is required", domain.ErrEmptyDocument)
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}

	return Document{id: id, text: text}, nil
}

// NewEmbedded validates and creates a Document from a caller-supplied embedding.
func NewEmbedded(id string, embedding []float32) (Document, error) {
	if err := validateID(id); err != nil {
		return Document{}, err
	}
	if len(embedding) == 0 {
		return Document{}, fmt.Errorf("%w: embedding is required", domain.ErrEmptyDocument)
	}

	return Document{id: id, embedding: cloneVector(embedding)}, nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the raw document text.
func (d *Document) Text() string { return d.text }

// Embedding returns the embedding vector, if any.
func (d *Document) Embedding() []float32 { return d.embedding }

// WithEmbedding returns a copy with the given embedding set.
func (d *Document) WithEmbedding(v []float32) Document {
	return Document{id: d.id, text: d.text, embedding: v}
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrEmptyDocument)
	}
	if len(id) > 256 {
		return fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	return nil
}

func cloneVector(v []float32) []float32 {
	c := make([]float32, len(v))
	copy(c, v)
	return c
}
