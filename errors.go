package mdman

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrMissingProgram = errors.New("program name cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// ErrEmptyTermItem indicates a description-list item with no inner markup
	// to serve as its term. The conversion aborts; neither output is returned.
	ErrEmptyTermItem = errors.New("description list item has no term markup")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
