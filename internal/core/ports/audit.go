package ports

import (
	"context"

	"github.com/osas-office/violation-portal/internal/core/domain"
)

// AuditRepository persists auth-trail events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts events for asynchronous recording. Record must not
// block the request path beyond buffer capacity and must never fail it.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// LoginThrottle limits repeated failed logins per username/address pair.
type LoginThrottle interface {
	// TooMany reports whether the pair has exhausted its failure budget.
	TooMany(ctx context.Context, username, addr string) (bool, error)
	// Fail registers one more failed attempt.
	Fail(ctx context.Context, username, addr string) error
	// Clear resets the pair after a successful login.
	Clear(ctx context.Context, username, addr string) error
}
