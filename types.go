package mdman

import (
	"fmt"
	"strings"
)

// DefaultSection is the man section used when none is specified.
const DefaultSection = "1"

// Metadata carries the document identity stamped into both output headers.
type Metadata struct {
	Program string // command name (required)
	Section string // man section, e.g. "1", "5" (default: "1")
	Title   string // page title (default: upper-cased program name)
	Date    string // human-readable date (default: resolved automatically)
	Version string // version string shown in the page footer line
	Prefix  string // install prefix recorded in a header comment
}

// Validate checks that required metadata is present and well-formed.
func (m Metadata) Validate() error {
	if m.Program == "" {
		return ErrMissingProgram
	}
	if m.Section != "" && strings.ContainsAny(m.Section, " \t\"") {
		return fmt.Errorf("invalid section %q", m.Section)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	Markdown string   // Markdown content (required)
	Meta     Metadata // Document metadata (Program required)
	CSS      string   // Extra CSS appended after the resolved style (optional)
}

// ConvertResult holds both conversion outputs.
type ConvertResult struct {
	HTML []byte // self-contained HTML document
	Man  []byte // troff man page source
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	styleInput    string
	resolvedStyle string
	assetPath     string
	highlight     bool
}

// WithStyle sets the stylesheet inlined into HTML output. Accepts a built-in
// style name, a path to a CSS file, or raw CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath sets a directory searched for custom styles before the
// embedded defaults. The directory must contain a styles/ subdirectory.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over
// WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithSyntaxHighlighting tokenizes fenced code blocks into classed spans in
// the HTML output. The man page output is unaffected.
func WithSyntaxHighlighting() Option {
	return func(c *Converter) {
		c.cfg.highlight = true
	}
}
