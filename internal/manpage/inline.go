package manpage

import (
	"strings"
	"unicode"
)

// runKind tags one segment of inline content. Font toggles mirror troff's
// single font register: there is no nesting discipline, an "off" run restores
// the normal font no matter which "on" preceded it.
type runKind int

const (
	runText runKind = iota
	runBoldOn
	runUnderlineOn
	runFontOff
	runHyphen // non-breaking hyphen
	runSpace  // non-breaking space
)

// run is one tagged segment of pending inline content. text is set only for
// runText segments.
type run struct {
	kind runKind
	text string
}

// pending accumulates inline runs between the tags that consume them
// (headings, paragraphs, list items, preformatted blocks).
type pending struct {
	runs []run
}

func (p *pending) text(s string) {
	if s == "" {
		return
	}
	p.runs = append(p.runs, run{kind: runText, text: s})
}

func (p *pending) mark(k runKind) {
	p.runs = append(p.runs, run{kind: k})
}

func (p *pending) append(rs []run) {
	p.runs = append(p.runs, rs...)
}

// take returns the accumulated runs trimmed of surrounding whitespace and
// resets the accumulator.
func (p *pending) take() []run {
	rs := p.runs
	p.runs = nil
	return trimRuns(rs)
}

// trimRuns strips leading and trailing whitespace from the text runs at the
// edges of a sequence. Non-text runs stop the trim: protected hyphens and
// spaces at the edges were put there deliberately.
func trimRuns(rs []run) []run {
	for len(rs) > 0 {
		if rs[0].kind != runText {
			break
		}
		t := strings.TrimLeftFunc(rs[0].text, unicode.IsSpace)
		if t != "" {
			rs[0].text = t
			break
		}
		rs = rs[1:]
	}
	for len(rs) > 0 {
		last := len(rs) - 1
		if rs[last].kind != runText {
			break
		}
		t := strings.TrimRightFunc(rs[last].text, unicode.IsSpace)
		if t != "" {
			rs[last].text = t
			break
		}
		rs = rs[:last]
	}
	return rs
}

// markHyphens splits raw text into runs, protecting hyphens that must not
// become line-break points: every hyphen of a -- run, and a single hyphen at
// the start of the text or after whitespace. Whitespace directly before a
// -- run is protected too, so option names like " --delete" stay on one line.
func markHyphens(s string) []run {
	var rs []run
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			rs = append(rs, run{kind: runText, text: buf.String()})
			buf.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '-' {
			buf.WriteRune(r)
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == '-' {
			n++
		}
		atStart := i == 0
		afterSpace := i > 0 && unicode.IsSpace(runes[i-1])

		switch {
		case n >= 2:
			if afterSpace {
				// Re-tag the space we already buffered as non-breaking.
				dropTrailingRune(&buf)
				flush()
				rs = append(rs, run{kind: runSpace})
			} else {
				flush()
			}
			for j := 0; j < n; j++ {
				rs = append(rs, run{kind: runHyphen})
			}
		case atStart || afterSpace:
			flush()
			rs = append(rs, run{kind: runHyphen})
		default:
			buf.WriteRune(r)
		}
		i += n - 1
	}
	flush()
	return rs
}

// dropTrailingRune removes the last rune from a builder. Builders have no
// truncate, so rebuild without the final rune.
func dropTrailingRune(b *strings.Builder) {
	s := b.String()
	runes := []rune(s)
	b.Reset()
	b.WriteString(string(runes[:len(runes)-1]))
}

// hardenSpaces rewrites every whitespace character inside text runs as a
// non-breaking space run. Used for inline code, which must never wrap.
func hardenSpaces(rs []run) []run {
	out := make([]run, 0, len(rs))
	for _, r := range rs {
		if r.kind != runText {
			out = append(out, r)
			continue
		}
		var buf strings.Builder
		for _, c := range r.text {
			if unicode.IsSpace(c) {
				if buf.Len() > 0 {
					out = append(out, run{kind: runText, text: buf.String()})
					buf.Reset()
				}
				out = append(out, run{kind: runSpace})
				continue
			}
			buf.WriteRune(c)
		}
		if buf.Len() > 0 {
			out = append(out, run{kind: runText, text: buf.String()})
		}
	}
	return out
}

// renderTroff resolves a run sequence to troff body text: font escapes for
// the toggles, \- and "\ " for the protected characters, backslash escaping
// for plain text, and a \& guard on lines that would start with a control
// character.
func renderTroff(rs []run) string {
	var b strings.Builder
	for _, r := range rs {
		switch r.kind {
		case runText:
			b.WriteString(escapeTroffText(r.text))
		case runBoldOn:
			b.WriteString(`\fB`)
		case runUnderlineOn:
			b.WriteString(`\fI`)
		case runFontOff:
			b.WriteString(`\fP`)
		case runHyphen:
			b.WriteString(`\-`)
		case runSpace:
			b.WriteString(`\ `)
		}
	}
	return guardControlLines(b.String())
}

// renderHTMLText resolves a run sequence to HTML text. Protected characters
// become visible non-breaking entities; font toggles are skipped because the
// HTML stream carries real tags for them.
func renderHTMLText(rs []run) string {
	var b strings.Builder
	for _, r := range rs {
		switch r.kind {
		case runText:
			b.WriteString(EscapeHTML(r.text))
		case runHyphen:
			b.WriteString("&#8209;")
		case runSpace:
			b.WriteString("&nbsp;")
		}
	}
	return b.String()
}

// renderHTMLPlain is renderHTMLText with the protected characters reverted
// to plain "-" and " ". Inline code spans are already non-breaking via the
// stylesheet, so the entities would be redundant there.
func renderHTMLPlain(rs []run) string {
	var b strings.Builder
	for _, r := range rs {
		switch r.kind {
		case runText:
			b.WriteString(EscapeHTML(r.text))
		case runHyphen:
			b.WriteString("-")
		case runSpace:
			b.WriteString(" ")
		}
	}
	return b.String()
}
