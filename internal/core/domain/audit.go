package domain

import "time"

// AuditKind classifies an auth-trail event.
type AuditKind string

const (
	AuditLoginSuccess  AuditKind = "login_success"
	AuditLoginFailure  AuditKind = "login_failure"
	AuditLogout        AuditKind = "logout"
	AuditRedirectLogin AuditKind = "redirect_login"
	AuditRedirectRole  AuditKind = "redirect_role"
	AuditCookieRestore AuditKind = "cookie_restore"
	AuditTokenRestore  AuditKind = "token_restore"
)

// AuditEvent records one auth-trail occurrence for a user (or attempted
// username when no account resolved).
type AuditEvent struct {
	ID     string
	UserID string
	Kind   AuditKind
	Detail string
	At     time.Time
}
