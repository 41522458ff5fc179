// Package render produces the HTML surfaces of the studio: the editor
// shell, the preview document, and the published and not-published views.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/vibe-studio/internal/studio"
)

// Renderer holds the parsed templates and the markdown pipeline.
type Renderer struct {
	md           goldmark.Markdown
	published    *template.Template
	notPublished *template.Template
	markdown     *template.Template
}

// New parses the built-in templates.
func New() (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	published, err := template.New("published").Parse(publishedTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing published template: %w", err)
	}
	notPublished, err := template.New("not-published").Parse(notPublishedTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing not-published template: %w", err)
	}
	markdown, err := template.New("markdown").Parse(markdownTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown template: %w", err)
	}

	return &Renderer{md: md, published: published, notPublished: notPublished, markdown: markdown}, nil
}

// IsMarkdown reports whether a page name is previewed as markdown.
func IsMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// PreviewDocument returns the document the preview frame loads for a page.
// Markdown pages are converted; everything else is passed through as is.
func (r *Renderer) PreviewDocument(name, content string) (string, error) {
	if !IsMarkdown(name) {
		return content, nil
	}

	var body bytes.Buffer
	if err := r.md.Convert([]byte(content), &body); err != nil {
		return "", fmt.Errorf("converting markdown %s: %w", name, err)
	}

	var out bytes.Buffer
	err := r.markdown.Execute(&out, struct {
		Name string
		Body template.HTML
	}{name, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("rendering markdown %s: %w", name, err)
	}
	return out.String(), nil
}

// Shell writes the editor shell.
func (r *Renderer) Shell(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// Published writes the full-page view of a published snapshot. The
// snapshot runs inside a sandboxed frame.
func (r *Renderer) Published(w io.Writer, name, snapshot string) error {
	return r.published.Execute(w, struct {
		Name    string
		HTML    string
		Sandbox string
	}{name, snapshot, studio.PublishedSandbox})
}

// NotPublished writes the placeholder shown for an unknown name.
func (r *Renderer) NotPublished(w io.Writer, name string) error {
	return r.notPublished.Execute(w, struct{ Name string }{name})
}
