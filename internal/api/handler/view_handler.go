package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/osas-office/violation-portal/internal/api/metrics"
	"github.com/osas-office/violation-portal/internal/view"
)

// ViewHandler exposes the view loader endpoint the client-side router
// fetches fragments from.
type ViewHandler struct {
	loader *view.Loader
}

func NewViewHandler(loader *view.Loader) *ViewHandler {
	return &ViewHandler{loader: loader}
}

// Load handles GET /load?view=<key>: 200 with the rendered view body, or a
// plain-text 404 diagnostic when the key is empty or resolves to no file.
func (h *ViewHandler) Load(c echo.Context) error {
	key := c.QueryParam("view")

	norm, err := h.loader.Serve(c, key)
	if err == nil {
		metrics.ViewsServedTotal.WithLabelValues(norm).Inc()
		return nil
	}

	if errors.Is(err, view.ErrEmptyKey) {
		metrics.ViewLoadErrorsTotal.WithLabelValues("empty_key").Inc()
		return c.String(http.StatusNotFound, "View path not specified")
	}

	var nf *view.NotFoundError
	if errors.As(err, &nf) {
		metrics.ViewLoadErrorsTotal.WithLabelValues("not_found").Inc()
		return c.String(http.StatusNotFound,
			fmt.Sprintf("View not found: %s (resolved to %s)", nf.Requested, nf.Resolved))
	}

	return err
}
