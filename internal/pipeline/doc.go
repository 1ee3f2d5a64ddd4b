// Package pipeline implements the markdown front end of the conversion.
//
// It covers the two stages that run before the tag-stream transformation:
//   - Markdown preprocessing (line ending normalization, blank line limits)
//   - Markdown to HTML fragment conversion via Goldmark
//
// The fragment output feeds internal/manpage, which walks it once and emits
// the final HTML body and the troff body. Keeping the front end here keeps
// the tag-stream code free of markdown concerns.
package pipeline
