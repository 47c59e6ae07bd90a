package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/osas-office/violation-portal/internal/api/metrics"
	"github.com/osas-office/violation-portal/internal/api/middleware"
	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/core/ports"
	"github.com/osas-office/violation-portal/internal/session"
	"github.com/osas-office/violation-portal/internal/view"
)

const rememberCookieAge = 30 * 24 * time.Hour

// AuthHandler serves the login page and processes login/logout.
type AuthHandler struct {
	auth     ports.AuthService
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	renderer *view.Renderer
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, throttle ports.LoginThrottle, audit ports.AuditRecorder, renderer *view.Renderer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, throttle: throttle, audit: audit, renderer: renderer, log: log}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Remember string `form:"remember"`
}

// LoginPage renders the login form. An already-authenticated session skips
// straight to its dashboard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sess, err := session.Current(c); err == nil {
		role := sess.GetString(session.KeyRole, "")
		if sess.GetString(session.KeyUserID, "") != "" && domain.KnownRole(role) {
			return c.Redirect(http.StatusFound, middleware.DashboardPath(c, role))
		}
	}
	return h.renderLogin(c, "")
}

// Login verifies credentials, populates the session, optionally issues the
// remember cookies, and redirects to the role's dashboard. Failures
// re-render the login page with a generic message; they never reveal
// whether the account exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, "Invalid username or password")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderLogin(c, "Username and password are required")
	}

	ctx := c.Request().Context()
	addr := c.RealIP()

	if h.throttle != nil {
		// Redis being unreachable fails open: worse login hygiene beats a
		// locked-out office.
		if blocked, err := h.throttle.TooMany(ctx, form.Username, addr); err != nil {
			h.log.Warn().Err(err).Msg("login throttle unavailable")
		} else if blocked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return h.renderLogin(c, "Too many attempts, try again later")
		}
	}

	user, err := h.auth.Login(ctx, form.Username, form.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.record("", domain.AuditLoginFailure, form.Username)
		if h.throttle != nil {
			if terr := h.throttle.Fail(ctx, form.Username, addr); terr != nil {
				h.log.Warn().Err(terr).Msg("login throttle update failed")
			}
		}
		return h.renderLogin(c, "Invalid username or password")
	}

	if h.throttle != nil {
		if err := h.throttle.Clear(ctx, form.Username, addr); err != nil {
			h.log.Warn().Err(err).Msg("login throttle clear failed")
		}
	}

	sess, err := session.Current(c)
	if err != nil {
		return err
	}
	sess.Set(session.KeyUserID, user.ID)
	sess.Set(session.KeyUsername, user.Username)
	sess.Set(session.KeyRole, user.Role)
	if user.StudentID != "" {
		sess.Set(session.KeyStudentID, user.StudentID)
	}
	if user.StudentIDCode != "" {
		sess.Set(session.KeyStudentIDCode, user.StudentIDCode)
	}
	if err := sess.Save(); err != nil {
		return err
	}

	if form.Remember != "" {
		h.setRememberCookies(c, user)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.record(user.ID, domain.AuditLoginSuccess, "")
	return c.Redirect(http.StatusFound, middleware.DashboardPath(c, user.Role))
}

// Logout destroys the session, clears every identity cookie, and returns to
// the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := ""
	if sess, err := session.Current(c); err == nil {
		userID = sess.GetString(session.KeyUserID, "")
		if err := sess.Destroy(); err != nil {
			h.log.Warn().Err(err).Msg("session destroy failed")
		}
	}

	for _, name := range []string{
		session.KeyUserID,
		session.KeyUsername,
		session.KeyRole,
		session.KeyStudentID,
		session.KeyStudentIDCode,
		middleware.RememberTokenCookie,
	} {
		clearCookie(c, name)
	}

	h.record(userID, domain.AuditLogout, "")
	return c.Redirect(http.StatusFound, middleware.LoginPath(c))
}

func (h *AuthHandler) renderLogin(c echo.Context, errMsg string) error {
	return h.renderer.Render(c, "auth/login", view.Context{
		"Layout": view.Layout{Title: "OSAS Portal — Sign In", CurrentPage: "login"},
		"Error":  errMsg,
	}, "layouts/auth")
}

func (h *AuthHandler) setRememberCookies(c echo.Context, user *domain.User) {
	setCookie(c, session.KeyUserID, user.ID)
	setCookie(c, session.KeyUsername, user.Username)
	setCookie(c, session.KeyRole, user.Role)
	if user.StudentID != "" {
		setCookie(c, session.KeyStudentID, user.StudentID)
	}
	if user.StudentIDCode != "" {
		setCookie(c, session.KeyStudentIDCode, user.StudentIDCode)
	}

	token, err := h.auth.MintRememberToken(user)
	if err != nil {
		h.log.Warn().Err(err).Msg("remember token mint failed")
		return
	}
	setCookie(c, middleware.RememberTokenCookie, token)
}

func (h *AuthHandler) record(userID string, kind domain.AuditKind, detail string) {
	if h.audit == nil {
		return
	}
	h.audit.Record(domain.AuditEvent{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		Detail: detail,
		At:     time.Now().UTC(),
	})
}

func setCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(rememberCookieAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
