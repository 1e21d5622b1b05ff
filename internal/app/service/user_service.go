package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"system_sentinel/internal/common"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/model"
	"system_sentinel/internal/domain/repository"
	"system_sentinel/internal/platform/cache"
)

// Uniqueness conflicts name the conflicting field. Registration happens
// before authentication, so distinguishing them is an accepted enumeration
// trade-off.
var (
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", common.ErrConflict)
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", common.ErrConflict)
)

const defaultListLimit = 100

// UserService owns user-record writes and enforces the email/username
// uniqueness invariants the authenticator depends on. The checks here are an
// optimization and a source of field-specific errors; the UNIQUE constraints
// in the schema are the actual guarantee.
type UserService struct {
	repo  repository.UserRepository
	cache *cache.UserCache
}

func NewUserService(repo repository.UserRepository, userCache *cache.UserCache) *UserService {
	return &UserService{repo: repo, cache: userCache}
}

type CreateUserRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	FullName *string `json:"full_name,omitempty"`
	Password string  `json:"password"`
}

// Create registers a new user. New accounts are always active and never
// superusers.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("email, username and password are required: %w", common.ErrBadRequest)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrBadRequest)
	}

	if err := s.checkEmailFree(ctx, req.Email, 0); err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(ctx, req.Username, 0); err != nil {
		return nil, err
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          req.Email,
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    false,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a patch to the user with the given id. Email and username
// changes are re-checked for uniqueness against all other records; a present
// password is re-hashed. All checks run before the single write, so a failed
// update leaves the record untouched.
func (s *UserService) Update(ctx context.Context, userID int64, patch model.UserPatch) (*model.User, error) {
	existing, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != existing.Email {
		if _, err := mail.ParseAddress(*patch.Email); err != nil {
			return nil, fmt.Errorf("invalid email address: %w", common.ErrBadRequest)
		}
		if err := s.checkEmailFree(ctx, *patch.Email, userID); err != nil {
			return nil, err
		}
	}
	if patch.Username != nil && *patch.Username != existing.Username {
		if *patch.Username == "" {
			return nil, fmt.Errorf("username must not be empty: %w", common.ErrBadRequest)
		}
		if err := s.checkUsernameFree(ctx, *patch.Username, userID); err != nil {
			return nil, err
		}
	}

	updated := patch.Apply(*existing)
	if patch.Password != nil {
		hashed, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.HashedPassword = hashed
	}
	now := time.Now().UTC()
	updated.UpdatedAt = &now

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, existing.Username, updated.Username)
	return &updated, nil
}

// List returns a page of users ordered by id.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes the target user. Elevation of the actor is enforced by the
// route middleware; this layer only enforces the no-self-deletion policy.
func (s *UserService) Delete(ctx context.Context, actor *model.User, targetID int64) error {
	if actor == nil {
		return common.ErrForbidden
	}
	if actor.ID == targetID {
		return common.ErrSelfDeletion
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, target.Username)
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, selfID int64) error {
	other, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if other.ID != selfID {
			return ErrEmailTaken
		}
		return nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("checking email uniqueness: %w", err)
}

func (s *UserService) checkUsernameFree(ctx context.Context, username string, selfID int64) error {
	other, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		if other.ID != selfID {
			return ErrUsernameTaken
		}
		return nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("checking username uniqueness: %w", err)
}
