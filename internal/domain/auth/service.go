package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"avd/internal/domain/errs"
	"avd/internal/platform/logger"
)

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration, log *zap.Logger) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, log: logger.OrNop(log), now: time.Now}
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	user, err := s.store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, EmployeeID: user.EmployeeID, Role: user.Role}, s.tokenTTL)
	if err != nil {
		return LoginResult{}, errs.Internal("token_failed", err)
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("last login update failed", zap.String("userId", user.ID), zap.Error(err))
	}
	return LoginResult{Token: token, ExpiresAt: s.now().Add(s.tokenTTL), User: user}, nil
}

// Register creates a login for an existing employee record.
func (s *Service) Register(ctx context.Context, email, password, role, employeeID string) (string, error) {
	if !validRole(role) {
		return "", ErrInvalidRole
	}
	if len(password) < 8 {
		return "", errs.Validation("weak_password", "a senha deve ter pelo menos 8 caracteres")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", errs.Internal("hash_failed", err)
	}
	return s.store.CreateUser(ctx, strings.TrimSpace(email), hash, role, employeeID)
}

func validRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
