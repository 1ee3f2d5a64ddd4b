package manpage

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmptyTermItem indicates a description-list item with no inner markup to
// serve as its term. The conversion aborts; neither output is valid.
var ErrEmptyTermItem = errors.New("description list item has no term markup")

// Paragraph macros. paraMacro holds the one in effect: .P at top level,
// .IP inside any list.
const (
	macroPara = ".P\n"
	macroItem = ".IP\n"
)

// listKind classifies an open list on the nesting stack.
type listKind int

const (
	listBullet listKind = iota
	listNumeric
	listDescription
)

// listMarker is one entry of the list nesting stack. counter is meaningful
// for numeric lists only and holds the value of the next item.
type listMarker struct {
	kind    listKind
	counter int
}

// itemPhase tracks where we are inside a list item. The phases are mutually
// exclusive, which the old pair of booleans could not express.
type itemPhase int

const (
	phaseNone            itemPhase = iota
	phaseFirstTag                  // inside a list item, before its first inner tag
	phaseDefinitionStart           // a definition body opens next: no paragraph break
)

// parser is the dual-emission state machine. It consumes start-tag, end-tag
// and text events in document order and appends fragments to two independent
// append-only output logs. One parser serves exactly one conversion.
type parser struct {
	lists     []listMarker
	phase     itemPhase
	termTag   string // tag whose close emits the pending definition term; "" when none
	inPre     bool
	inCode    bool
	paraMacro string
	pending   pending

	html []string
	man  []string
}

func newParser() *parser {
	return &parser{paraMacro: macroPara}
}

func (p *parser) emitHTML(frag string) { p.html = append(p.html, frag) }
func (p *parser) emitMan(frag string)  { p.man = append(p.man, frag) }

func (p *parser) top() *listMarker {
	if len(p.lists) == 0 {
		return nil
	}
	return &p.lists[len(p.lists)-1]
}

func (p *parser) inDescriptionList() bool {
	m := p.top()
	return m != nil && m.kind == listDescription
}

// startTag processes one opening tag. name arrives lower-cased from the
// tokenizer. Tag identity is decided here, before anything is emitted, so
// the output logs are never patched afterwards.
func (p *parser) startTag(name string, attrs []html.Attribute) {
	suppressBreak := p.phase == phaseDefinitionStart

	if p.phase == phaseFirstTag {
		if p.inDescriptionList() {
			p.termTag = name
			if name == "p" {
				name = "dt"
			} else {
				p.emitHTML("<dt>")
			}
		} else if name == "p" {
			suppressBreak = true
		}
	}
	p.phase = phaseNone

	htmlName := name
	switch name {
	case "p":
		if !suppressBreak {
			p.emitMan(p.paraMacro)
		}
	case "li":
		p.phase = phaseFirstTag
		switch m := p.top(); {
		case m == nil:
			// stray item outside any list: HTML passthrough only
		case m.kind == listBullet:
			p.emitMan(".IP o\n")
		case m.kind == listNumeric:
			p.emitMan(fmt.Sprintf(".IP %d.\n", m.counter))
			m.counter++
		case m.kind == listDescription:
			// No open tag: the first inner tag supplies the dt/dd
			// structure and the close emits </dd>.
			return
		}
	case "blockquote":
		p.emitMan(".RS 4\n")
	case "pre":
		p.inPre = true
		p.emitMan(p.paraMacro + ".nf\n")
	case "code":
		if !p.inPre {
			p.inCode = true
			p.pending.mark(runBoldOn)
		}
	case "strong", "b":
		p.pending.mark(runBoldOn)
	case "em", "i":
		htmlName = "u"
		p.pending.mark(runUnderlineOn)
	case "ol":
		start := 1
		for _, a := range attrs {
			if a.Key == "start" {
				if v, err := strconv.Atoi(a.Val); err == nil {
					start = v
				}
			}
		}
		p.emitMan(p.paraMacro)
		if len(p.lists) > 0 {
			p.emitMan(".RS\n")
		}
		if start == 0 {
			// A zero-started ordered list is a term/definition list.
			htmlName = "dl"
			attrs = nil
			p.lists = append(p.lists, listMarker{kind: listDescription})
		} else {
			p.lists = append(p.lists, listMarker{kind: listNumeric, counter: start})
		}
		p.paraMacro = macroItem
	case "ul":
		p.emitMan(p.paraMacro)
		if len(p.lists) > 0 {
			p.emitMan(".RS\n")
		}
		p.paraMacro = macroItem
		p.lists = append(p.lists, listMarker{kind: listBullet})
	}

	p.emitHTML(openTag(htmlName, attrs))
}

// endTag processes one closing tag. It returns ErrEmptyTermItem when a
// description-list item closes without ever having opened a term.
func (p *parser) endTag(name string) error {
	orig := name
	wasTerm := p.termTag != "" && name == p.termTag

	var txt []run
	consumed := false
	switch name {
	case "h1", "h2", "p", "li", "pre":
		txt = p.pending.take()
		consumed = true
	default:
		if wasTerm {
			txt = p.pending.take()
			consumed = true
		}
	}

	switch name {
	case "h1":
		p.emitMan(p.paraMacro + `.SH "` + renderTroff(txt) + "\"\n")
	case "h2":
		p.emitMan(p.paraMacro + `.SS "` + renderTroff(txt) + "\"\n")
	case "p":
		if wasTerm {
			name = "dt"
			p.emitMan(`.IP "` + renderTroff(txt) + "\"\n")
			p.termTag = ""
		} else if len(txt) > 0 {
			p.emitMan(renderTroff(txt) + "\n")
		}
	case "li":
		if p.inDescriptionList() {
			if p.phase == phaseFirstTag {
				return ErrEmptyTermItem
			}
			name = "dd"
		}
		p.phase = phaseNone
		if len(txt) > 0 {
			p.emitMan(renderTroff(txt) + "\n")
		}
	case "blockquote":
		p.emitMan(".RE\n")
	case "pre":
		p.inPre = false
		p.emitMan(renderTroff(txt) + "\n.fi\n")
	case "code":
		if p.inPre {
			break
		}
		p.inCode = false
		txt = p.fontOff(txt, consumed)
	case "strong", "b":
		txt = p.fontOff(txt, consumed)
	case "em", "i":
		name = "u"
		txt = p.fontOff(txt, consumed)
	case "ol", "ul":
		if len(p.lists) == 0 {
			break // unbalanced close: HTML passthrough only
		}
		popped := *p.top()
		p.lists = p.lists[:len(p.lists)-1]
		if popped.kind == listDescription {
			name = "dl"
		}
		if len(p.lists) > 0 {
			p.emitMan(".RE\n")
		} else {
			p.paraMacro = macroPara
		}
		if p.phase == phaseDefinitionStart {
			p.phase = phaseNone
		}
	}

	// A term carried by a non-paragraph tag emits its macro here; the
	// paragraph case already did in the dispatch above.
	if wasTerm && orig != "p" {
		p.emitMan(`.IP "` + renderTroff(txt) + "\"\n")
		p.termTag = ""
	}

	p.emitHTML("</" + name + ">")

	if wasTerm {
		if orig == "p" {
			p.emitHTML("<dd>")
		} else {
			p.emitHTML("</dt><dd>")
		}
		p.phase = phaseDefinitionStart
	}
	return nil
}

// fontOff closes an inline font span: the restore-normal run goes into the
// consumed text when this tag was itself a consuming boundary, otherwise
// into the pending accumulator.
func (p *parser) fontOff(txt []run, consumed bool) []run {
	if consumed {
		return append(txt, run{kind: runFontOff})
	}
	p.pending.mark(runFontOff)
	return txt
}

// text processes one text event. Inside preformatted blocks the data passes
// through untouched apart from HTML escaping; elsewhere hyphens and, inside
// inline code, spaces are protected against line breaking.
func (p *parser) text(data string) {
	if p.inPre {
		p.emitHTML(EscapeHTML(data))
		p.pending.text(data)
		return
	}

	runs := markHyphens(data)
	if p.inCode {
		runs = hardenSpaces(runs)
		p.emitHTML(renderHTMLPlain(runs))
	} else {
		p.emitHTML(renderHTMLText(runs))
	}
	p.pending.append(runs)
}

// openTag renders an opening tag with HTML-escaped attribute values.
func openTag(name string, attrs []html.Attribute) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(EscapeHTML(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

// Convert walks the restricted-vocabulary HTML fragment once and returns the
// transformed HTML body and the troff body. On error neither output is
// usable; there is no partial-result contract.
func Convert(fragment string) (htmlBody, manBody string, err error) {
	p := newParser()
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if zerr := z.Err(); !errors.Is(zerr, io.EOF) {
				return "", "", fmt.Errorf("tokenizing html: %w", zerr)
			}
			return strings.Join(p.html, ""), strings.Join(p.man, ""), nil
		case html.TextToken:
			p.text(string(z.Text()))
		case html.StartTagToken:
			t := z.Token()
			p.startTag(t.Data, t.Attr)
		case html.EndTagToken:
			t := z.Token()
			if err := p.endTag(t.Data); err != nil {
				return "", "", err
			}
		case html.SelfClosingTagToken:
			t := z.Token()
			p.selfClosing(t.Data, t.Attr)
		case html.CommentToken, html.DoctypeToken:
			// dropped from both outputs
		}
	}
}

// selfClosing handles void elements (hr, br, img). They pass through the
// HTML output and carry no man-page semantics.
func (p *parser) selfClosing(name string, attrs []html.Attribute) {
	p.phase = phaseNone
	open := openTag(name, attrs)
	p.emitHTML(open[:len(open)-1] + "/>")
}
