package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/session"
)

type stubUsers struct {
	byID map[string]*domain.User
}

func (r *stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

type stubAuth struct {
	valid map[string]*domain.User
}

func (s *stubAuth) Login(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrInvalidCredentials
}

func (s *stubAuth) MintRememberToken(*domain.User) (string, error) { return "", nil }

func (s *stubAuth) ParseRememberToken(token string) (*domain.User, error) {
	if u, ok := s.valid[token]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidCredentials
}

type recordedAudit struct {
	events []domain.AuditEvent
}

func (r *recordedAudit) Record(e domain.AuditEvent) { r.events = append(r.events, e) }

type gateFixture struct {
	store *session.Store
	gate  *AuthGate
	audit *recordedAudit
	users *stubUsers
	auth  *stubAuth
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	users := &stubUsers{byID: map[string]*domain.User{}}
	auth := &stubAuth{valid: map[string]*domain.User{}}
	audit := &recordedAudit{}
	return &gateFixture{
		store: session.NewStore([]byte("test-secret"), filepath.Join(t.TempDir(), "sessions"), zerolog.Nop()),
		gate:  NewAuthGate(users, auth, audit, zerolog.Nop()),
		audit: audit,
		users: users,
		auth:  auth,
	}
}

// hit sends one request through session middleware + gate, returning the
// recorder and whether the protected handler ran.
func (f *gateFixture) hit(t *testing.T, required, target string, cookies []*http.Cookie, inspect echo.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(target)

	reached := false
	handler := f.store.Middleware()(f.gate.RequireRole(required)(func(c echo.Context) error {
		reached = true
		if inspect != nil {
			if err := inspect(c); err != nil {
				return err
			}
		}
		return c.HTML(http.StatusOK, "protected content")
	}))

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, reached
}

func identityCookies(userID, username, role string) []*http.Cookie {
	return []*http.Cookie{
		{Name: session.KeyUserID, Value: userID},
		{Name: session.KeyUsername, Value: username},
		{Name: session.KeyRole, Value: role},
	}
}

func TestAuthGate_CookiesSeedSession(t *testing.T) {
	f := newGateFixture(t)

	rec, reached := f.hit(t, domain.RoleAdmin, "/admin/dashboard",
		identityCookies("u1", "alice", domain.RoleAdmin),
		func(c echo.Context) error {
			sess, _ := session.Current(c)
			if got := sess.GetString(session.KeyUserID, ""); got != "u1" {
				t.Fatalf("session user_id = %q, want u1", got)
			}
			if got := sess.GetString(session.KeyRole, ""); got != domain.RoleAdmin {
				t.Fatalf("session role = %q, want admin", got)
			}
			id, ok := CurrentIdentity(c)
			if !ok || id.Username != "alice" {
				t.Fatalf("identity not attached: %+v", id)
			}
			return nil
		})

	if !reached {
		t.Fatalf("gate blocked valid admin cookies")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthGate_WrongRoleRedirectsToOwnDashboard(t *testing.T) {
	f := newGateFixture(t)

	rec, reached := f.hit(t, domain.RoleAdmin, "/admin/dashboard",
		identityCookies("u2", "bob", domain.RoleUser), nil)

	if reached {
		t.Fatalf("user role reached admin entry point")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/user/dashboard" {
		t.Fatalf("redirected to %q, want /user/dashboard", loc)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("protected bytes emitted before redirect: %q", rec.Body.String())
	}
}

func TestAuthGate_NoCredentialsRedirectsToLogin(t *testing.T) {
	f := newGateFixture(t)

	rec, reached := f.hit(t, domain.RoleAdmin, "/admin/dashboard", nil, nil)

	if reached {
		t.Fatalf("unauthenticated request reached the handler")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirected to %q, want /login", loc)
	}
}

func TestAuthGate_UnrecognizedRoleRedirectsToLogin(t *testing.T) {
	f := newGateFixture(t)

	rec, reached := f.hit(t, domain.RoleAdmin, "/admin/dashboard",
		identityCookies("u3", "eve", "superuser"), nil)

	if reached {
		t.Fatalf("unrecognized role reached the handler")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirected to %q, want /login", loc)
	}
}

func TestAuthGate_PartialCookiesAreUnauthenticated(t *testing.T) {
	f := newGateFixture(t)

	// role cookie without user_id must not count as identity.
	rec, reached := f.hit(t, domain.RoleAdmin, "/admin/dashboard",
		[]*http.Cookie{{Name: session.KeyRole, Value: domain.RoleAdmin}}, nil)

	if reached {
		t.Fatalf("partial cookie state reached the handler")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirected to %q, want /login", loc)
	}
}

func TestAuthGate_RememberTokenRestores(t *testing.T) {
	f := newGateFixture(t)
	f.auth.valid["tok-1"] = &domain.User{ID: "u4", Username: "carol", Role: domain.RoleUser, StudentIDCode: "2021-00044"}

	rec, reached := f.hit(t, domain.RoleUser, "/user/dashboard",
		[]*http.Cookie{{Name: RememberTokenCookie, Value: "tok-1"}},
		func(c echo.Context) error {
			id, _ := CurrentIdentity(c)
			if id.UserID != "u4" || id.StudentIDCode != "2021-00044" {
				t.Fatalf("token identity not restored: %+v", id)
			}
			return nil
		})

	if !reached {
		t.Fatalf("valid remember token did not grant access")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthGate_GarbageRememberTokenRedirects(t *testing.T) {
	f := newGateFixture(t)

	rec, reached := f.hit(t, domain.RoleUser, "/user/dashboard",
		[]*http.Cookie{{Name: RememberTokenCookie, Value: "bogus"}}, nil)

	if reached {
		t.Fatalf("garbage token reached the handler")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("redirected to %q, want /login", loc)
	}
}

func TestAuthGate_StudentCodeBackfill(t *testing.T) {
	f := newGateFixture(t)
	f.users.byID["u5"] = &domain.User{ID: "u5", Username: "dave", Role: domain.RoleUser, StudentID: "stu-5", StudentIDCode: "2021-00055"}

	_, reached := f.hit(t, domain.RoleUser, "/user/dashboard",
		identityCookies("u5", "dave", domain.RoleUser),
		func(c echo.Context) error {
			id, _ := CurrentIdentity(c)
			if id.StudentIDCode != "2021-00055" {
				t.Fatalf("student code not backfilled: %+v", id)
			}
			sess, _ := session.Current(c)
			if got := sess.GetString(session.KeyStudentIDCode, ""); got != "2021-00055" {
				t.Fatalf("session student_id_code = %q", got)
			}
			return nil
		})

	if !reached {
		t.Fatalf("gate blocked valid user cookies")
	}
}

func TestAuthGate_CookieStudentCodeNotOverwritten(t *testing.T) {
	f := newGateFixture(t)
	f.users.byID["u6"] = &domain.User{ID: "u6", Role: domain.RoleUser, StudentIDCode: "repo-code"}

	cookies := append(identityCookies("u6", "erin", domain.RoleUser),
		&http.Cookie{Name: session.KeyStudentIDCode, Value: "cookie-code"})

	_, reached := f.hit(t, domain.RoleUser, "/user/dashboard", cookies,
		func(c echo.Context) error {
			id, _ := CurrentIdentity(c)
			if id.StudentIDCode != "cookie-code" {
				t.Fatalf("backfill overwrote cookie value: %+v", id)
			}
			return nil
		})

	if !reached {
		t.Fatalf("gate blocked valid user cookies")
	}
}

func TestAuthGate_SubPathRedirectKeepsPrefix(t *testing.T) {
	f := newGateFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("X-Forwarded-Prefix", "/osas")
	for _, ck := range identityCookies("u7", "frank", domain.RoleUser) {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/admin/dashboard")

	handler := f.store.Middleware()(f.gate.RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	}))
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/osas/user/dashboard" {
		t.Fatalf("redirected to %q, want /osas/user/dashboard", loc)
	}
}
