package manpage

import (
	"fmt"
	"strings"
	"text/template"
)

// Meta is the read-only document metadata inserted into the output headers.
// All fields arrive pre-resolved; assembly performs lookup-free insertion.
type Meta struct {
	Program string // command name, e.g. "mdman"
	Section string // man section, e.g. "1"
	Title   string // page title, conventionally the upper-cased program name
	Date    string // human-readable date, e.g. "25 Aug 2026"
	Version string // version string, e.g. "3.4.1"
	Prefix  string // install prefix, e.g. "/usr"
}

// htmlShell wraps the transformed body in a self-contained page. The only
// external reference is the web font stylesheet link.
var htmlShell = template.Must(template.New("page").Parse(`<html><head>
<title>{{.Title}}</title>
<meta charset="UTF-8"/>
<link href="https://fonts.googleapis.com/css2?family=Roboto&family=Roboto+Mono&display=swap" rel="stylesheet">
<style>
{{.CSS}}</style>
</head><body>
`))

// AssembleHTML wraps the accumulated HTML body fragments with the document
// header and the date byline footer.
func AssembleHTML(body string, meta Meta, css string) (string, error) {
	title := meta.Title
	if title == "" {
		title = meta.Program
	}
	var b strings.Builder
	err := htmlShell.Execute(&b, struct {
		Title string
		CSS   string
	}{Title: EscapeHTML(title), CSS: css})
	if err != nil {
		return "", fmt.Errorf("rendering html shell: %w", err)
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(`<div style="float: right"><p><i>` + EscapeHTML(meta.Date) + "</i></p></div>\n")
	b.WriteString("</body></html>\n")
	return b.String(), nil
}

// AssembleMan wraps the accumulated troff body fragments with the header
// block: a structural comment carrying the raw metadata, then the .TH line.
// The trailer is empty.
func AssembleMan(body string, meta Meta) string {
	title := meta.Title
	if title == "" {
		title = strings.ToUpper(meta.Program)
	}
	var b strings.Builder
	b.WriteString(".\\\" Generated from markdown source. Edits here will be lost.\n")
	fmt.Fprintf(&b, ".\\\" prefix=%s\n", meta.Prefix)
	fmt.Fprintf(&b, ".TH \"%s\" \"%s\" \"%s\" \"%s %s\" \"User Commands\"\n",
		title, meta.Section, meta.Date, meta.Program, meta.Version)
	b.WriteString(body)
	return b.String()
}
