package ports

import (
	"context"

	"github.com/osas-office/violation-portal/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)

	// MintRememberToken issues the signed long-lived token backing the
	// "remember me" cookie. ParseRememberToken verifies one and returns the
	// identity it carries, or domain.ErrInvalidCredentials.
	MintRememberToken(user *domain.User) (string, error)
	ParseRememberToken(token string) (*domain.User, error)
}
