package manpage

import (
	"regexp"
	"strings"
)

// htmlEscaper covers the four characters that are unsafe in both HTML body
// and double-quoted attribute context.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes text for embedding in HTML body or attribute context.
// Total over all input; already-escaped output is never passed back in.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// controlLine matches a troff control character in column zero. Lines of
// body text starting with "." or "'" would otherwise be read as requests.
var controlLine = regexp.MustCompile(`(?m)^(['.])`)

// escapeTroffText escapes literal backslashes in plain body text. Applied to
// text runs only, before font escapes are interleaved, so the escapes
// themselves are never re-escaped.
func escapeTroffText(s string) string {
	return strings.ReplaceAll(s, `\`, `\e`)
}

// guardControlLines prefixes the zero-width no-op \& to any line starting
// with a troff control character.
func guardControlLines(s string) string {
	return controlLine.ReplaceAllString(s, `\&$1`)
}
