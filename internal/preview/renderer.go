package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer turns a Page into HTML.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("profile-preview").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse preview templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, page Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "preview", page); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

// RenderHTML renders into a buffer so the result can be embedded in another
// template or pushed over the live channel.
func (r *Renderer) RenderHTML(page Page) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, page); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
