package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/core/ports"
)

const defaultRememberTTL = 30 * 24 * time.Hour

// AuthService implements credential verification and remember-token issuance.
type AuthService struct {
	repo        ports.UserRepository
	tokenSecret string
	rememberTTL time.Duration
}

func NewAuthService(repo ports.UserRepository, tokenSecret string, rememberTTL time.Duration) *AuthService {
	if rememberTTL <= 0 {
		rememberTTL = defaultRememberTTL
	}
	return &AuthService{repo: repo, tokenSecret: tokenSecret, rememberTTL: rememberTTL}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// MintRememberToken signs a long-lived token carrying the full identity so a
// browser restart can rehydrate the session without re-login.
func (s *AuthService) MintRememberToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":         user.ID,
		"username":        user.Username,
		"role":            user.Role,
		"student_id":      user.StudentID,
		"student_id_code": user.StudentIDCode,
		"jti":             uuid.NewString(),
		"exp":             time.Now().Add(s.rememberTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.tokenSecret))
}

// ParseRememberToken verifies a remember token and returns the identity it
// carries. Any structural or signature problem yields ErrInvalidCredentials.
func (s *AuthService) ParseRememberToken(token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.tokenSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	user := &domain.User{
		ID:            claimString(claims, "user_id"),
		Username:      claimString(claims, "username"),
		Role:          claimString(claims, "role"),
		StudentID:     claimString(claims, "student_id"),
		StudentIDCode: claimString(claims, "student_id_code"),
	}
	if user.ID == "" || user.Role == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
