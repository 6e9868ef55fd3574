// Package bootstrap prepares runtime state the server expects at startup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin makes sure the account named by BOOTSTRAP_ADMIN_EMAIL exists and
// is an admin. It is a no-op when no email is configured. An existing account
// keeps its password.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) (*models.User, error) {
	if cfg == nil || db == nil {
		return nil, nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" {
		return nil, nil
	}

	var admin models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			created, err := newAdmin(cfg, email)
			if err != nil {
				return err
			}
			admin = *created
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		case admin.IsAdmin:
			return nil
		default:
			admin.IsAdmin = true
			return tx.Model(&admin).Update("is_admin", true).Error
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin %s: %w", email, err)
	}

	middleware.Logger.Info("bootstrap admin ensured",
		slog.String("user_id", admin.ID),
		slog.String("handle", admin.DisplayHandle()),
	)
	return &admin, nil
}

func newAdmin(cfg *config.Config, email string) (*models.User, error) {
	if cfg.BootstrapAdminPassword == "" {
		return nil, errors.New("BOOTSTRAP_ADMIN_PASSWORD must be set")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Administrator",
		IsAdmin:  true,
	}
	if username := strings.TrimSpace(cfg.BootstrapAdminUsername); username != "" {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, err
		}
		admin.Username = &username
	}
	return admin, nil
}
