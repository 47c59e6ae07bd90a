package middleware

// Identity is the reconciled authentication record for one request.
type Identity struct {
	UserID        string
	Username      string
	Role          string
	StudentID     string
	StudentIDCode string
}

// Complete reports whether the identity is usable: partial records never
// count as authenticated.
func (id Identity) Complete() bool {
	return id.UserID != "" && id.Role != ""
}

// Source names which credential source produced the resolved identity.
type Source int

const (
	SourceNone Source = iota
	SourceCookie
	SourceSession
)

// ResolveIdentity applies the credential precedence rule as a pure function
// of the two sources. A complete cookie identity wins and overwrites the
// session copy (cookies survive browser restarts, so they are treated as
// the more durable record); otherwise a complete session identity stands;
// otherwise the request is unauthenticated. When the cookie side wins, its
// empty optional fields are backfilled from the session so a sparse cookie
// set does not erase known display data.
func ResolveIdentity(cookie, sess Identity) (Identity, Source) {
	if cookie.Complete() {
		if cookie.Username == "" {
			cookie.Username = sess.Username
		}
		if cookie.StudentID == "" {
			cookie.StudentID = sess.StudentID
		}
		if cookie.StudentIDCode == "" {
			cookie.StudentIDCode = sess.StudentIDCode
		}
		return cookie, SourceCookie
	}
	if sess.Complete() {
		return sess, SourceSession
	}
	return Identity{}, SourceNone
}
