package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(t *testing.T, target, routePath, forwardedPrefix string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if forwardedPrefix != "" {
		req.Header.Set("X-Forwarded-Prefix", forwardedPrefix)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	if routePath != "" {
		c.SetPath(routePath)
	}
	return c
}

func TestBasePrefix_ForwardedPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"plain", "osas", "osas"},
		{"leading slash", "/osas", "osas"},
		{"nested", "/osas/portal", "osas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(t, "/admin/dashboard", "/admin/dashboard", tt.prefix)
			if got := BasePrefix(c); got != tt.want {
				t.Fatalf("BasePrefix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasePrefix_RootDeployment(t *testing.T) {
	c := newContext(t, "/admin/dashboard", "/admin/dashboard", "")
	if got := BasePrefix(c); got != "" {
		t.Fatalf("expected empty prefix for root deployment, got %q", got)
	}
}

func TestBasePrefix_RouteSuffixTrim(t *testing.T) {
	// Reverse proxy forwarded the full external path without stripping.
	c := newContext(t, "/osas/admin/dashboard", "/admin/dashboard", "")
	if got := BasePrefix(c); got != "osas" {
		t.Fatalf("BasePrefix = %q, want osas", got)
	}
}

func TestBasePrefix_URIFallback(t *testing.T) {
	// No matched route: fall back to the request URI's first segment.
	c := newContext(t, "/osas/load", "", "")
	if got := BasePrefix(c); got != "osas" {
		t.Fatalf("BasePrefix = %q, want osas", got)
	}
}

func TestBasePrefix_Deterministic(t *testing.T) {
	c := newContext(t, "/osas/admin/dashboard", "/admin/dashboard", "")
	first := BasePrefix(c)
	for i := 0; i < 3; i++ {
		if got := BasePrefix(c); got != first {
			t.Fatalf("BasePrefix changed between calls: %q vs %q", first, got)
		}
	}
}
