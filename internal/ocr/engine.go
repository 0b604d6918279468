package ocr

import "errors"

// ErrUnusableInput marks input that is not a readable document at all. It is
// the only recognition failure that propagates as a hard error; everything
// downstream degrades field by field instead.
var ErrUnusableInput = errors.New("input is not a usable document")

// Engine defines the interface for text recognition over an uploaded
// document (image or PDF).
type Engine interface {
	// ExtractText recognizes the document's text, preserving line breaks.
	ExtractText(data []byte, contentType string) (string, error)
	// Close releases engine resources.
	Close() error
}
