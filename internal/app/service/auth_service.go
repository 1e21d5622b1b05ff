package service

import (
	"context"
	"errors"
	"fmt"

	"system_sentinel/internal/common"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/model"
	"system_sentinel/internal/domain/repository"
	"system_sentinel/internal/platform/cache"
)

// Internal login/token failure reasons. Each wraps common.ErrUnauthorized:
// the caller-facing contract is a single generic 401 no matter which check
// failed, so a client cannot probe which accounts exist.
var (
	ErrUnknownIdentifier = fmt.Errorf("no user for identifier: %w", common.ErrUnauthorized)
	ErrBadPassword       = fmt.Errorf("password mismatch: %w", common.ErrUnauthorized)
	ErrUnknownSubject    = fmt.Errorf("token subject has no matching user: %w", common.ErrUnauthorized)
)

// AuthService resolves credentials or bearer tokens into user identities and
// issues tokens on successful login.
type AuthService struct {
	userRepo repository.UserRepository
	cache    *cache.UserCache
	tokens   *security.TokenService
}

func NewAuthService(userRepo repository.UserRepository, userCache *cache.UserCache, tokens *security.TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, cache: userCache, tokens: tokens}
}

// Login resolves an identifier (tried as username first, then as email) plus
// password into a user.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	if identifier == "" || password == "" {
		return nil, ErrUnknownIdentifier
	}

	user, err := s.userRepo.FindByUsername(ctx, identifier)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		user, err = s.userRepo.FindByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrUnknownIdentifier
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrBadPassword
	}
	return user, nil
}

// IssueToken signs an access token for the user with the configured TTL.
// The token subject is the username.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	return s.tokens.Issue(user.Username, s.tokens.TTL())
}

// ResolveToken verifies the token and looks up the user named by its
// subject. A validly-signed token whose subject no longer exists resolves to
// the same unauthorized outcome as a bad signature.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*model.User, error) {
	subject, err := s.tokens.VerifySubject(tokenString)
	if err != nil {
		return nil, err
	}

	if user, ok := s.cache.GetByUsername(ctx, subject); ok {
		return user, nil
	}

	user, err := s.userRepo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	s.cache.Put(ctx, user)
	return user, nil
}
