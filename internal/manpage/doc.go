// Package manpage converts the restricted-vocabulary HTML produced by the
// markdown front end into two synchronized outputs: a cleaned HTML body and
// an equivalent troff man page body.
//
// The conversion is a single pass over the tag stream. One parser instance
// serves one conversion; it holds the list nesting stack, the current
// paragraph macro, the pending inline-run accumulator and the in-code /
// in-preformatted flags, and appends fragments to two independent
// append-only output logs. Assembly then wraps both logs with fixed
// headers carrying the document metadata.
package manpage
