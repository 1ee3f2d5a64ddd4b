package mdman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-mdman/internal/assets"
	"github.com/alnah/go-mdman/internal/dateutil"
	"github.com/alnah/go-mdman/internal/fileutil"
	"github.com/alnah/go-mdman/internal/manpage"
	"github.com/alnah/go-mdman/internal/pipeline"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ assets.AssetLoader            = (*assetLoaderAdapter)(nil)
)

// Converter orchestrates the markdown-to-manpage conversion pipeline.
// Create with NewConverter() and use Convert() for conversion. A Converter
// is safe for concurrent use.
type Converter struct {
	cfg               converterConfig
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader // from WithAssetLoader
	preprocessor      pipeline.MarkdownPreprocessor
	htmlConverter     pipeline.HTMLConverter
	dates             dateutil.Resolver
}

// publicToInternalAdapter wraps a public AssetLoader as the internal one.
type publicToInternalAdapter struct {
	pub AssetLoader
}

func (a *publicToInternalAdapter) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithStyle, WithAssetLoader,
// WithSyntaxHighlighting). Returns an error if style resolution fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		assetLoader:  assets.NewEmbeddedLoader(),
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		dates:        dateutil.NewResolver(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// The highlight flag is an option, so the goldmark instance is built
	// after options are applied.
	c.htmlConverter = pipeline.NewGoldmarkConverter(c.cfg.highlight)

	// Handle WithAssetPath: resolve to internal loader
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	// Handle WithAssetLoader (public interface): wrap to internal interface
	if c.publicAssetLoader != nil {
		c.assetLoader = &publicToInternalAdapter{pub: c.publicAssetLoader}
	}

	// Resolve style input (name, path, or CSS content) to CSS content
	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	return c, nil
}

// Convert runs the full pipeline and returns both outputs.
// The context is used for cancellation.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	// Preprocess markdown
	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to an HTML fragment
	fragment, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		if errors.Is(err, pipeline.ErrHTMLConversion) {
			return nil, wrapError(ErrHTMLConversion, err)
		}
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Single pass over the tag stream produces both bodies.
	htmlBody, manBody, err := manpage.Convert(fragment)
	if err != nil {
		if errors.Is(err, manpage.ErrEmptyTermItem) {
			return nil, wrapError(ErrEmptyTermItem, err)
		}
		return nil, fmt.Errorf("transforming tag stream: %w", err)
	}

	meta := c.resolveMeta(input.Meta)

	// Build combined CSS: resolved style first (base), user CSS last (can
	// override).
	cssContent := c.cfg.resolvedStyle
	if input.CSS != "" {
		cssContent += "\n" + input.CSS
	}

	htmlDoc, err := manpage.AssembleHTML(htmlBody, meta, cssContent)
	if err != nil {
		return nil, fmt.Errorf("assembling HTML document: %w", err)
	}
	manDoc := manpage.AssembleMan(manBody, meta)

	return &ConvertResult{
		HTML: []byte(htmlDoc),
		Man:  []byte(manDoc),
	}, nil
}

// resolveMeta fills metadata defaults: section, title, and the date, which
// honors SOURCE_DATE_EPOCH for reproducible builds.
func (c *Converter) resolveMeta(m Metadata) manpage.Meta {
	section := m.Section
	if section == "" {
		section = DefaultSection
	}
	title := m.Title
	if title == "" {
		title = strings.ToUpper(m.Program)
	}
	return manpage.Meta{
		Program: m.Program,
		Section: section,
		Title:   title,
		Date:    c.dates.Resolve(m.Date, time.Time{}),
		Version: m.Version,
		Prefix:  m.Prefix,
	}
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. Called during NewConverter() after options are applied and the
// asset loader is configured.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		css, err := c.assetLoader.LoadStyle(assets.DefaultStyleName)
		if err != nil {
			return fmt.Errorf("loading default style: %w", convertAssetError(err))
		}
		c.cfg.resolvedStyle = css
		return nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	// Style name -> use asset loader
	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	c.cfg.resolvedStyle = css
	return nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier at config load time. Both
// paths converge here.
func (c *Converter) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	return input.Meta.Validate()
}
