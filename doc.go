// Package mdman converts markdown documentation into two synchronized
// outputs: a self-contained HTML page and a troff man page source.
//
// Basic usage:
//
//	conv, err := mdman.NewConverter()
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := conv.Convert(ctx, mdman.Input{
//		Markdown: source,
//		Meta:     mdman.Metadata{Program: "rsync", Section: "1"},
//	})
//
// res.HTML holds the HTML document, res.Man the nroff source. Both outputs
// come from a single pass over the same tag stream, so their structure always
// agrees.
//
// The markdown dialect is the documentation subset: headings, paragraphs,
// lists, blockquotes, code spans and blocks, emphasis. An ordered list
// written to start at zero becomes a term/definition list in both outputs.
// Tags outside this vocabulary pass through to the HTML output untouched and
// contribute nothing to the man page.
package mdman
