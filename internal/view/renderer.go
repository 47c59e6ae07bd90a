package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrViewNotFound marks a render of a view or layout whose file does not
// exist. This is a deployment bug, not a user condition: the response is
// allowed to halt with it.
var ErrViewNotFound = errors.New("view not found")

// Context carries the named values for exactly one render call. Entries are
// bound into the template as a flat namespace and are not inherited by
// nested partials unless re-passed.
type Context map[string]any

// ContentKey is the distinguished context entry through which a layout
// receives the buffered view output.
const ContentKey = "Content"

// Layout is the typed chrome viewmodel pages pass alongside free-form
// context entries.
type Layout struct {
	Title       string
	CurrentPage string
	Username    string
	Role        string
}

// Renderer renders named view files from a fixed root directory. Views are
// buffered before any byte reaches the client so a layout can position the
// content as a single value. Templates are parsed per render call because
// the asset helper is bound to the current request's path context.
type Renderer struct {
	root string
	log  zerolog.Logger
}

func NewRenderer(root string, log zerolog.Logger) *Renderer {
	return &Renderer{root: root, log: log}
}

// Render writes the named view, wrapped in layout when one is given, as the
// response body. A missing view or layout fails with ErrViewNotFound naming
// the file; nothing is written in that case.
func (r *Renderer) Render(c echo.Context, name string, ctx Context, layout string) error {
	content, err := r.renderString(c, name, ctx)
	if err != nil {
		return err
	}

	if layout != "" {
		lctx := make(Context, len(ctx)+1)
		for k, v := range ctx {
			lctx[k] = v
		}
		lctx[ContentKey] = template.HTML(content)
		if content, err = r.renderString(c, layout, lctx); err != nil {
			return err
		}
	}

	return c.HTML(http.StatusOK, content)
}

// Partial renders a fragment with the same buffering and context semantics
// as Render but never wraps it in a layout. Partials are best-effort: a
// missing or broken fragment is logged and yields no output, and the
// surrounding page completes.
func (r *Renderer) Partial(c echo.Context, name string, ctx Context) template.HTML {
	content, err := r.renderString(c, name, ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("partial", name).Msg("partial skipped")
		return ""
	}
	return template.HTML(content)
}

func (r *Renderer) renderString(c echo.Context, name string, ctx Context) (string, error) {
	path := filepath.Join(r.root, filepath.FromSlash(name)+".html")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrViewNotFound, name, path)
	}

	tmpl, err := template.New(filepath.Base(path)).Funcs(r.funcs(c)).ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("parse view %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(ctx)); err != nil {
		return "", fmt.Errorf("render view %s: %w", name, err)
	}
	return buf.String(), nil
}

// funcs binds the per-request template helpers. Every static reference in a
// view goes through asset so it stays correct under sub-path deployment and
// inside AJAX-injected fragments.
func (r *Renderer) funcs(c echo.Context) template.FuncMap {
	return template.FuncMap{
		"asset": func(path string) string {
			return AssetURL(c, path)
		},
		"prefix": func() string {
			if p := BasePrefix(c); p != "" {
				return "/" + p
			}
			return ""
		},
	}
}
