package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/osas-office/violation-portal/internal/api/metrics"
	"github.com/osas-office/violation-portal/internal/api/middleware"
	"github.com/osas-office/violation-portal/internal/view"
)

// PageHandler renders the role dashboards: page content buffered into the
// main layout, with the topnav and sidebar partials rendered best-effort.
type PageHandler struct {
	renderer *view.Renderer
	log      zerolog.Logger
}

func NewPageHandler(renderer *view.Renderer, log zerolog.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, log: log}
}

// Home routes the bare deployment root to the login page; the auth gate on
// the dashboards decides where an authenticated visitor actually lands.
func (h *PageHandler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, middleware.LoginPath(c))
}

func (h *PageHandler) AdminDashboard(c echo.Context) error {
	return h.dashboard(c, "admin/dashcontent", "OSAS Portal — Admin")
}

func (h *PageHandler) UserDashboard(c echo.Context) error {
	return h.dashboard(c, "user/dashcontent", "OSAS Portal — My Violations")
}

func (h *PageHandler) dashboard(c echo.Context, content, title string) error {
	start := time.Now()
	id, _ := middleware.CurrentIdentity(c)

	layout := view.Layout{
		Title:       title,
		CurrentPage: content,
		Username:    id.Username,
		Role:        id.Role,
	}

	// Partials do not inherit the page context; each gets its own copy
	// explicitly.
	topnav := h.renderer.Partial(c, "partials/topnav", view.Context{"Layout": layout})
	sidebar := h.renderer.Partial(c, "partials/sidebar", view.Context{"Layout": layout})

	ctx := view.Context{
		"Layout":        layout,
		"Topnav":        topnav,
		"Sidebar":       sidebar,
		"Username":      id.Username,
		"StudentID":     id.StudentID,
		"StudentIDCode": id.StudentIDCode,
	}

	err := h.renderer.Render(c, content, ctx, "layouts/main")
	if err == nil {
		metrics.RenderDuration.WithLabelValues(content).Observe(time.Since(start).Seconds())
	}
	return err
}
