package database

import (
	"context"
	"errors"
	"fmt"

	"system_sentinel/internal/common"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/model"
	"system_sentinel/internal/domain/repository"
	"system_sentinel/internal/platform/config"
)

// EnsureAdmin creates the bootstrap superuser account if no user with the
// configured admin email exists. It is idempotent and safe to run on every
// startup.
func EnsureAdmin(ctx context.Context, repo repository.UserRepository, cfg *config.Config) error {
	_, err := repo.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("looking up admin account: %w", err)
	}

	hashed, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &model.User{
		Email:          cfg.AdminEmail,
		Username:       "admin",
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	return nil
}
