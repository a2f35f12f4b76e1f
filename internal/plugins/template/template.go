package templateplugin

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/tatoeba/tatoprov/internal/ports"
)

// Renderer renders deployed configuration with text/template. Unknown
// variables are an error rather than an empty string.
type Renderer struct {
	allowMissing bool
}

var _ ports.TemplateRenderer = (*Renderer)(nil)

// New creates a strict Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Lenient returns a Renderer that renders missing keys as "<no value>".
func Lenient() *Renderer {
	return &Renderer{allowMissing: true}
}

var funcs = template.FuncMap{
	// quote emits a double-quoted string literal, valid in both shell
	// environment files and JavaScript.
	"quote": strconv.Quote,
	"lower": strings.ToLower,
	"default": func(fallback, value any) any {
		if value == nil {
			return fallback
		}
		if s, ok := value.(string); ok && s == "" {
			return fallback
		}
		return value
	},
}

// Render implements ports.TemplateRenderer.
func (r *Renderer) Render(name string, tmpl []byte, vars map[string]any) ([]byte, error) {
	if len(tmpl) == 0 {
		return nil, errors.New("template content cannot be empty")
	}

	t := template.New(name).Funcs(funcs)
	if !r.allowMissing {
		t = t.Option("missingkey=error")
	}
	t, err := t.Parse(string(tmpl))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	var rendered bytes.Buffer
	if err := t.Execute(&rendered, vars); err != nil {
		return nil, fmt.Errorf("render template %q: %w", name, err)
	}
	return rendered.Bytes(), nil
}
