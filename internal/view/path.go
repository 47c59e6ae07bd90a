// Package view is the view and asset resolution layer: it derives the
// deployment's base path per request, turns logical asset paths into
// delivery-absolute URLs, renders views into layouts via buffered
// composition, and maps logical view keys to template files.
package view

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// BasePrefix returns the single leading path segment identifying the
// deployment root, or "" for a root-deployed portal. The candidate comes
// from the deployment-provided forwarded prefix; when that is absent it is
// derived from the request URI, trimming the matched route path so that a
// root deployment yields no prefix. Deterministic for a given request; no
// deployment name is hard-coded.
func BasePrefix(c echo.Context) string {
	if p := c.Request().Header.Get("X-Forwarded-Prefix"); p != "" {
		return firstSegment(p)
	}

	uri := c.Request().URL.Path
	if route := c.Path(); route != "" && route != "/" && strings.HasSuffix(uri, route) {
		return firstSegment(strings.TrimSuffix(uri, route))
	}
	return firstSegment(uri)
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
