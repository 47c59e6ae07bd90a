package ports

import (
	"context"

	"github.com/osas-office/violation-portal/internal/core/domain"
)

// UserRepository defines the interface for account persistence. GetByID is
// also the collaborator used by the auth gate to backfill a user session's
// student_id_code when it is absent from both cookie and session.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
