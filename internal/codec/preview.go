package codec

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/oriolmontcreus/capsulo-sub000/internal/fieldvalue"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Previewer renders markdown-typed field values to HTML for read-only
// display. Stateless; one instance is safe across calls.
type Previewer struct {
	engine goldmark.Markdown
}

// NewPreviewer constructs a previewer with GFM extensions enabled.
func NewPreviewer() *Previewer {
	return &Previewer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts one markdown source into HTML.
func (p *Previewer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("codec: render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderField renders a markdown field entry at the requested locale,
// falling back to the default locale for untranslated content.
func (p *Previewer) RenderField(entry interfaces.FieldEntry, locale, defaultLocale string, locales []string) ([]byte, error) {
	if entry.Type != interfaces.FieldTypeMarkdown {
		return nil, fmt.Errorf("codec: field type %q is not markdown", entry.Type)
	}
	resolved := fieldvalue.NormalizeEntry(entry, locales).Resolve(locale, defaultLocale)
	text, _ := resolved.(string)
	return p.Render([]byte(text))
}
