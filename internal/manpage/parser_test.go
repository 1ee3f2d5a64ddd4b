package manpage

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConvert_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		htmlContains []string
		htmlNot      []string
		manContains  []string
		manNot       []string
	}{
		{
			name:         "section heading",
			input:        "<h1>NAME</h1>",
			htmlContains: []string{"<h1>NAME</h1>"},
			manContains:  []string{".P\n", `.SH "NAME"`},
		},
		{
			name:         "subsection heading",
			input:        "<h2>Options Summary</h2>",
			htmlContains: []string{"<h2>Options Summary</h2>"},
			manContains:  []string{`.SS "Options Summary"`},
		},
		{
			name:         "paragraph",
			input:        "<p>plain text</p>",
			htmlContains: []string{"<p>plain text</p>"},
			manContains:  []string{".P\nplain text\n"},
		},
		{
			name:         "blockquote",
			input:        "<blockquote><p>quoted</p></blockquote>",
			htmlContains: []string{"<blockquote>", "</blockquote>"},
			manContains:  []string{".RS 4\n", "quoted\n", ".RE\n"},
		},
		{
			name:         "preformatted block",
			input:        "<pre><code>x &lt; y</code></pre>",
			htmlContains: []string{"<pre><code>x &lt; y</code></pre>"},
			manContains:  []string{".nf\n", "x < y\n.fi\n"},
		},
		{
			name:         "pre keeps hyphens verbatim",
			input:        "<pre><code>run --all</code></pre>",
			htmlContains: []string{"run --all"},
			manContains:  []string{"run --all\n.fi\n"},
			manNot:       []string{`\-`},
		},
		{
			name:         "bullet list",
			input:        "<ul>\n<li>first</li>\n<li>second</li>\n</ul>",
			htmlContains: []string{"<ul>", "<li>first</li>", "</ul>"},
			manContains:  []string{".IP o\nfirst\n.IP o\nsecond\n"},
		},
		{
			name:         "ordered list counts from one",
			input:        "<ol><li>a</li><li>b</li><li>c</li></ol>",
			htmlContains: []string{"<ol>", "</ol>"},
			manContains:  []string{".IP 1.\na\n.IP 2.\nb\n.IP 3.\nc\n"},
		},
		{
			name:        "ordered list honors start attribute",
			input:       `<ol start="5"><li>e</li><li>f</li></ol>`,
			manContains: []string{".IP 5.\ne\n.IP 6.\nf\n"},
		},
		{
			name:        "sibling list counters are independent",
			input:       "<ol><li>a</li></ol><ol><li>b</li></ol>",
			manContains: []string{".IP 1.\na\n", ".IP 1.\nb\n"},
			manNot:      []string{".IP 2."},
		},
		{
			name:         "unknown tags pass through inertly",
			input:        `<p>x</p><table class="t"><tr><td>cell</td></tr></table>`,
			htmlContains: []string{`<table class="t">`, "<td>cell", "</table>"},
			manNot:       []string{"cell", "table"},
		},
		{
			name:         "inline fonts",
			input:        "<p><strong>bold</strong> and <em>soft</em></p>",
			htmlContains: []string{"<strong>bold</strong>", "<u>soft</u>"},
			manContains:  []string{`\fBbold\fP and \fIsoft\fP`},
		},
		{
			name:         "italic tag rewritten to underline",
			input:        "<p><i>term</i></p>",
			htmlContains: []string{"<u>term</u>"},
			htmlNot:      []string{"<i>"},
			manContains:  []string{`\fIterm\fP`},
		},
		{
			name:         "inline code is bold and unbreakable",
			input:        "<p>run <code>mdman --all</code> now</p>",
			htmlContains: []string{"<code>mdman --all</code>"},
			manContains:  []string{`run \fBmdman\ \-\-all\fP now`},
		},
		{
			name:         "double hyphen protected in flowing text",
			input:        "<p>a -- b</p>",
			htmlContains: []string{"a&nbsp;&#8209;&#8209; b"},
			manContains:  []string{`a\ \-\- b`},
		},
		{
			name:        "leading hyphen protected",
			input:       "<p>-v enables logging</p>",
			manContains: []string{`\-v enables logging`},
		},
		{
			name:        "mid-word hyphen left breakable",
			input:       "<p>well-known name</p>",
			manContains: []string{"well-known name\n"},
			manNot:      []string{`\-`},
		},
		{
			name:        "backslash escaped in man output",
			input:       `<p>C:\tmp</p>`,
			manContains: []string{`C:\etmp`},
		},
		{
			name:        "leading dot neutralized",
			input:       "<p>.SH is a macro</p>",
			manContains: []string{`\&.SH is a macro`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			htmlOut, manOut, err := Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, want := range tt.htmlContains {
				if !strings.Contains(htmlOut, want) {
					t.Errorf("html output missing %q\ngot: %s", want, htmlOut)
				}
			}
			for _, notWant := range tt.htmlNot {
				if strings.Contains(htmlOut, notWant) {
					t.Errorf("html output should not contain %q\ngot: %s", notWant, htmlOut)
				}
			}
			for _, want := range tt.manContains {
				if !strings.Contains(manOut, want) {
					t.Errorf("man output missing %q\ngot: %s", want, manOut)
				}
			}
			for _, notWant := range tt.manNot {
				if strings.Contains(manOut, notWant) {
					t.Errorf("man output should not contain %q\ngot: %s", notWant, manOut)
				}
			}
		})
	}
}

func TestConvert_DescriptionList(t *testing.T) {
	t.Parallel()

	input := `<ol start="0"><li><p>Foo</p> text</li></ol>`
	htmlOut, manOut, err := Convert(input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	for _, want := range []string{"<dl>", "<dt>Foo</dt>", "<dd>", "text</dd>", "</dl>"} {
		if !strings.Contains(htmlOut, want) {
			t.Errorf("html output missing %q\ngot: %s", want, htmlOut)
		}
	}
	if strings.Contains(htmlOut, "<ol") {
		t.Errorf("zero-started list should be rewritten, got: %s", htmlOut)
	}
	if strings.Contains(htmlOut, "<li>") {
		t.Errorf("definition items should not keep li tags, got: %s", htmlOut)
	}
	if !strings.Contains(manOut, ".IP \"Foo\"\ntext\n") {
		t.Errorf("man output missing term/definition pair, got: %s", manOut)
	}
}

func TestConvert_DescriptionListCodeTerm(t *testing.T) {
	t.Parallel()

	input := `<ol start="0"><li><p><code>--verbose</code></p><p>More output.</p></li></ol>`
	htmlOut, manOut, err := Convert(input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// The paragraph wrapping the code span becomes the term.
	if !strings.Contains(htmlOut, "<dt><code>--verbose</code></dt><dd>") {
		t.Errorf("html term structure wrong, got: %s", htmlOut)
	}
	if !strings.Contains(manOut, `.IP "\fB\-\-verbose\fP"`) {
		t.Errorf("man term macro wrong, got: %s", manOut)
	}
	// The definition paragraph directly after the term emits no .P break.
	if !strings.Contains(manOut, "\"\nMore output.\n") {
		t.Errorf("definition body should follow term without paragraph break, got: %s", manOut)
	}
}

func TestConvert_EmptyDescriptionItemFails(t *testing.T) {
	t.Parallel()

	_, _, err := Convert(`<ol start="0"><li></li></ol>`)
	if !errors.Is(err, ErrEmptyTermItem) {
		t.Fatalf("Convert() error = %v, want ErrEmptyTermItem", err)
	}

	// Bare text without inner markup cannot serve as a term either.
	_, _, err = Convert(`<ol start="0"><li>just text</li></ol>`)
	if !errors.Is(err, ErrEmptyTermItem) {
		t.Fatalf("Convert() error = %v, want ErrEmptyTermItem", err)
	}
}

func TestConvert_NestedListsBalanceIndents(t *testing.T) {
	t.Parallel()

	for depth := 1; depth <= 10; depth++ {
		var b strings.Builder
		for i := 0; i < depth; i++ {
			b.WriteString("<ul><li><p>item</p>")
		}
		for i := 0; i < depth; i++ {
			b.WriteString("</li></ul>")
		}

		_, manOut, err := Convert(b.String())
		if err != nil {
			t.Fatalf("depth %d: Convert() error = %v", depth, err)
		}
		starts := strings.Count(manOut, ".RS\n")
		ends := strings.Count(manOut, ".RE\n")
		if starts != depth-1 || ends != depth-1 {
			t.Errorf("depth %d: got %d .RS and %d .RE, want %d each\n%s",
				depth, starts, ends, depth-1, manOut)
		}
	}
}

func TestConvert_ListCountersAreListLocal(t *testing.T) {
	t.Parallel()

	// An ordered list nested inside another must not disturb the outer counter.
	input := "<ol><li><p>one</p><ol><li><p>inner</p></li></ol></li><li><p>two</p></li></ol>"
	_, manOut, err := Convert(input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for _, want := range []string{".IP 1.\n", ".IP 2.\n"} {
		if strings.Count(manOut, want) < 1 {
			t.Errorf("man output missing %q\ngot: %s", want, manOut)
		}
	}
	// outer item two still numbered 2, not 3
	if !strings.Contains(manOut, ".IP 2.\ntwo\n") {
		t.Errorf("outer counter disturbed by nested list:\n%s", manOut)
	}
}

func TestConvert_SequentialItemNumbers(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<ol>")
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&b, "<li>item %d</li>", i)
	}
	b.WriteString("</ol>")

	_, manOut, err := Convert(b.String())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for n := 1; n <= 7; n++ {
		want := fmt.Sprintf(".IP %d.\nitem %d\n", n, n-1)
		if !strings.Contains(manOut, want) {
			t.Errorf("man output missing %q\ngot: %s", want, manOut)
		}
	}
}

func TestConvert_AttributesEscapedAndPreserved(t *testing.T) {
	t.Parallel()

	htmlOut, _, err := Convert(`<p title="a &amp; b">x</p>`)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(htmlOut, `<p title="a &amp; b">`) {
		t.Errorf("attribute not escaped, got: %s", htmlOut)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	t.Parallel()

	htmlOut, manOut, err := Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if htmlOut != "" || manOut != "" {
		t.Errorf("empty input should yield empty bodies, got html=%q man=%q", htmlOut, manOut)
	}
}
