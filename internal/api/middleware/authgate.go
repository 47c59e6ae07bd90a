package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/osas-office/violation-portal/internal/api/metrics"
	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/core/ports"
	"github.com/osas-office/violation-portal/internal/session"
	"github.com/osas-office/violation-portal/internal/view"
)

// RememberTokenCookie is the signed long-lived companion to the plain
// identity cookies.
const RememberTokenCookie = "remember_token"

const identityContextKey = "identity"

// CurrentIdentity returns the identity the auth gate attached to the
// request.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

// AuthGate guards entry points: it reconciles cookie and session identity,
// then enforces the role the entry point requires, redirecting on failure.
// No protected content is emitted before the gate passes.
type AuthGate struct {
	users ports.UserRepository
	auth  ports.AuthService
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewAuthGate(users ports.UserRepository, auth ports.AuthService, audit ports.AuditRecorder, log zerolog.Logger) *AuthGate {
	return &AuthGate{users: users, auth: auth, audit: audit, log: log}
}

// RequireAny returns middleware admitting any recognized authenticated
// identity, whichever role it carries. Used by the fragment loader, whose
// role scoping happens at the page entry points.
func (g *AuthGate) RequireAny() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Current(c)
			if err != nil {
				return g.redirectLogin(c, "session unavailable")
			}

			sessID := sessionIdentity(sess)
			id, src := ResolveIdentity(cookieIdentity(c), sessID)
			if src == SourceNone && g.auth != nil {
				id = g.tokenIdentity(c)
			}
			if !id.Complete() || !domain.KnownRole(id.Role) {
				return g.redirectLogin(c, "unauthenticated")
			}

			writeIdentity(sess, id)
			if err := sess.Save(); err != nil {
				g.log.Error().Err(err).Msg("session save failed")
			}

			c.Set(identityContextKey, id)
			return next(c)
		}
	}
}

// RequireRole returns middleware enforcing the given role for an entry
// point. A missing identity redirects to the login page; a recognized
// alternate role redirects to that role's own dashboard, never to an error
// page; an unrecognized role redirects to login. Redirects terminate the
// request immediately.
func (g *AuthGate) RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Current(c)
			if err != nil {
				return g.redirectLogin(c, "session unavailable")
			}

			sessID := sessionIdentity(sess)
			id, src := ResolveIdentity(cookieIdentity(c), sessID)
			if src == SourceCookie && !sessID.Complete() {
				g.record(id.UserID, domain.AuditCookieRestore, "")
			}

			// Lowest-priority source: the signed remember token, consulted
			// only when neither plain cookies nor session yield an identity.
			if src == SourceNone && g.auth != nil {
				id = g.tokenIdentity(c)
			}

			if !id.Complete() {
				return g.redirectLogin(c, "unauthenticated")
			}

			if id.Role != required {
				if domain.KnownRole(id.Role) {
					metrics.AuthRedirectsTotal.WithLabelValues("role_mismatch").Inc()
					g.record(id.UserID, domain.AuditRedirectRole, c.Request().URL.Path)
					return c.Redirect(http.StatusFound, DashboardPath(c, id.Role))
				}
				return g.redirectLogin(c, "unrecognized role")
			}

			// A user session without its student code gets it backfilled
			// from the account record; failure is non-fatal.
			if required == domain.RoleUser && id.StudentIDCode == "" && g.users != nil {
				if u, err := g.users.GetByID(c.Request().Context(), id.UserID); err == nil {
					id.StudentID = u.StudentID
					id.StudentIDCode = u.StudentIDCode
				} else {
					g.log.Warn().Err(err).Str("user_id", id.UserID).Msg("student code backfill failed")
				}
			}

			writeIdentity(sess, id)
			if err := sess.Save(); err != nil {
				g.log.Error().Err(err).Msg("session save failed")
			}

			c.Set(identityContextKey, id)
			return next(c)
		}
	}
}

func (g *AuthGate) redirectLogin(c echo.Context, why string) error {
	metrics.AuthRedirectsTotal.WithLabelValues("unauthenticated").Inc()
	g.record("", domain.AuditRedirectLogin, why)
	return c.Redirect(http.StatusFound, LoginPath(c))
}

func (g *AuthGate) tokenIdentity(c echo.Context) Identity {
	cookie, err := c.Cookie(RememberTokenCookie)
	if err != nil || cookie.Value == "" {
		return Identity{}
	}
	user, err := g.auth.ParseRememberToken(cookie.Value)
	if err != nil {
		return Identity{}
	}
	g.record(user.ID, domain.AuditTokenRestore, "")
	return Identity{
		UserID:        user.ID,
		Username:      user.Username,
		Role:          user.Role,
		StudentID:     user.StudentID,
		StudentIDCode: user.StudentIDCode,
	}
}

func (g *AuthGate) record(userID string, kind domain.AuditKind, detail string) {
	if g.audit == nil {
		return
	}
	g.audit.Record(domain.AuditEvent{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		Detail: detail,
		At:     time.Now().UTC(),
	})
}

// cookieIdentity collects the plain identity cookies. user_id and role are
// the gating pair; the rest are optional display/linkage data.
func cookieIdentity(c echo.Context) Identity {
	var id Identity
	id.UserID = cookieValue(c, session.KeyUserID)
	id.Role = cookieValue(c, session.KeyRole)
	if !id.Complete() {
		// Partial cookie state never seeds an identity.
		return Identity{}
	}
	id.Username = cookieValue(c, session.KeyUsername)
	id.StudentID = cookieValue(c, session.KeyStudentID)
	id.StudentIDCode = cookieValue(c, session.KeyStudentIDCode)
	return id
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func sessionIdentity(sess *session.Session) Identity {
	return Identity{
		UserID:        sess.GetString(session.KeyUserID, ""),
		Username:      sess.GetString(session.KeyUsername, ""),
		Role:          sess.GetString(session.KeyRole, ""),
		StudentID:     sess.GetString(session.KeyStudentID, ""),
		StudentIDCode: sess.GetString(session.KeyStudentIDCode, ""),
	}
}

func writeIdentity(sess *session.Session, id Identity) {
	sess.Set(session.KeyUserID, id.UserID)
	sess.Set(session.KeyUsername, id.Username)
	sess.Set(session.KeyRole, id.Role)
	if id.StudentID != "" {
		sess.Set(session.KeyStudentID, id.StudentID)
	}
	if id.StudentIDCode != "" {
		sess.Set(session.KeyStudentIDCode, id.StudentIDCode)
	}
}

// LoginPath composes the deployment-absolute login URL.
func LoginPath(c echo.Context) string {
	return prefixed(c, "/login")
}

// DashboardPath composes the deployment-absolute dashboard URL for a role.
func DashboardPath(c echo.Context, role string) string {
	if role == domain.RoleAdmin {
		return prefixed(c, "/admin/dashboard")
	}
	return prefixed(c, "/user/dashboard")
}

func prefixed(c echo.Context, path string) string {
	if p := view.BasePrefix(c); p != "" {
		return "/" + p + path
	}
	return path
}
