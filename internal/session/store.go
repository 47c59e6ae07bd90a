// Package session holds the portal's cookie-backed session state: a
// filesystem-backed gorilla store with lazy directory provisioning, plus a
// request-scoped accessor used by handlers and the auth gate.
package session

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CookieName is the session cookie; session IDs travel only through it,
// never through URLs.
const CookieName = "osas_portal"

const lifetime = 24 * time.Hour

// Session value keys shared with the identity cookies.
const (
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyRole          = "role"
	KeyStudentID     = "student_id"
	KeyStudentIDCode = "student_id_code"
)

// Store wraps a gorilla FilesystemStore bound to a dedicated session
// directory. Initialization is lazy and idempotent: the first operation of
// any kind creates the directory, falling back silently to the platform
// temp directory when it cannot be created or is not writable. Falling back
// is never fatal.
type Store struct {
	secret []byte
	dir    string
	log    zerolog.Logger

	once  sync.Once
	inner *sessions.FilesystemStore
}

func NewStore(secret []byte, dir string, log zerolog.Logger) *Store {
	return &Store{secret: secret, dir: dir, log: log}
}

func (s *Store) init() {
	s.once.Do(func() {
		dir := s.dir
		if err := os.MkdirAll(dir, 0o700); err != nil || !writable(dir) {
			s.log.Debug().Str("dir", dir).Msg("session dir unusable, using temp dir")
			dir = os.TempDir()
		}

		s.inner = sessions.NewFilesystemStore(dir, s.secret)
		s.inner.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   int(lifetime / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
	})
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// Get implements gorilla's sessions.Store.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	s.init()
	return s.inner.Get(r, name)
}

// New implements gorilla's sessions.Store.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	s.init()
	return s.inner.New(r, name)
}

// Save implements gorilla's sessions.Store.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	s.init()
	return s.inner.Save(r, w, sess)
}

// Middleware exposes the store to handlers through echo-contrib.
func (s *Store) Middleware() echo.MiddlewareFunc {
	return echosession.Middleware(s)
}

// Session is the request-scoped view over the client's session values.
type Session struct {
	sess *sessions.Session
	c    echo.Context
}

// Current returns the request's session. The underlying store initializes
// lazily on first touch.
func Current(c echo.Context) (*Session, error) {
	sess, err := echosession.Get(CookieName, c)
	if sess == nil {
		// nil session means the middleware is not installed; a decode error
		// on a stale cookie still yields a usable fresh session.
		return nil, err
	}
	return &Session{sess: sess, c: c}, nil
}

// GetString returns the value stored under key, or def when the key is
// absent or not a string.
func (s *Session) GetString(key, def string) string {
	if v, ok := s.sess.Values[key].(string); ok {
		return v
	}
	return def
}

func (s *Session) Set(key string, value string) {
	s.sess.Values[key] = value
}

func (s *Session) Has(key string) bool {
	_, ok := s.sess.Values[key]
	return ok
}

func (s *Session) Remove(key string) {
	delete(s.sess.Values, key)
}

// Save flushes pending changes to the store and cookie.
func (s *Session) Save() error {
	return s.sess.Save(s.c.Request(), s.c.Response())
}

// Destroy clears all values and invalidates the session cookie. The next
// request starts a fresh session.
func (s *Session) Destroy() error {
	for k := range s.sess.Values {
		delete(s.sess.Values, k)
	}
	s.sess.Options.MaxAge = -1
	return s.Save()
}
