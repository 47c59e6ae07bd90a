package view

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrEmptyKey is returned when the loader is asked for an empty view key.
var ErrEmptyKey = errors.New("view path not specified")

// NotFoundError reports a key that resolved to no file under the views
// root, carrying both the requested key and the resolved path for
// diagnostics.
type NotFoundError struct {
	Requested string
	Resolved  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("view %q not found (resolved to %s)", e.Requested, e.Resolved)
}

// aliases remaps deprecated logical keys to their current ones, preserving
// links saved by older clients. Applied only on an exact match of the
// normalized key.
var aliases = map[string]string{
	"admin_page/dashcontent":  "admin/dashcontent",
	"admin_page/Department":   "admin/department",
	"admin_page/Section":      "admin/section",
	"admin_page/Student":      "admin/student",
	"admin_page/Violation":    "admin/violation",
	"admin_page/Report":       "admin/report",
	"admin_page/Announcement": "admin/announcement",
	"user_page/dashcontent":   "user/dashcontent",
	"user_page/Violation":     "user/violation",
}

// Aliases returns a copy of the legacy-key table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// NormalizeKey removes every ".." occurrence and backslash from a requested
// key and trims surrounding slashes. This denylist substitution is the
// minimum bar; Loader.Resolve additionally asserts canonical containment
// under the views root.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "..", "")
	key = strings.ReplaceAll(key, `\`, "")
	return strings.Trim(key, "/")
}

// Loader resolves logical view keys to template files under a fixed root
// and streams their output.
type Loader struct {
	root string
	log  zerolog.Logger
}

func NewLoader(root string, log zerolog.Logger) *Loader {
	return &Loader{root: root, log: log}
}

// Resolve normalizes the key, applies the alias table, and returns the
// resolved key and file path. The candidate is canonicalized and must be a
// descendant of the views root; anything else is NotFoundError.
func (l *Loader) Resolve(key string) (string, string, error) {
	if key == "" {
		return "", "", ErrEmptyKey
	}

	norm := NormalizeKey(key)
	if norm == "" {
		return "", "", ErrEmptyKey
	}
	if alias, ok := aliases[norm]; ok {
		norm = alias
	}

	rootAbs, err := filepath.Abs(l.root)
	if err != nil {
		return "", "", fmt.Errorf("views root: %w", err)
	}

	path := filepath.Join(rootAbs, filepath.FromSlash(norm)+".html")
	if !contained(rootAbs, path) {
		return "", "", &NotFoundError{Requested: key, Resolved: path}
	}
	if _, err := os.Stat(path); err != nil {
		return "", "", &NotFoundError{Requested: key, Resolved: path}
	}
	return norm, path, nil
}

// Serve resolves key and executes the view file directly to the response
// writer, streaming its raw output with no layout wrapping. It returns the
// resolved key; the mapping is logged for every request.
func (l *Loader) Serve(c echo.Context, key string) (string, error) {
	norm, path, err := l.Resolve(key)
	if err != nil {
		return "", err
	}

	l.log.Info().
		Str("requested", key).
		Str("resolved", norm).
		Str("file", path).
		Msg("view loaded")

	tmpl, err := template.New(filepath.Base(path)).Funcs(loaderFuncs(c)).ParseFiles(path)
	if err != nil {
		return norm, fmt.Errorf("parse view %s: %w", norm, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return norm, tmpl.Execute(c.Response(), nil)
}

// loaderFuncs mirrors the renderer's helpers so fragments keep absolute
// asset URLs when injected into an already-loaded page.
func loaderFuncs(c echo.Context) template.FuncMap {
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

// contained reports whether path is the root itself or a descendant of it
// after canonicalization.
func contained(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
