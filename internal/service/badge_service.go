package service

import (
	"context"
	"fmt"

	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
)

// BadgeService grants and revokes badges. Only admins may call it.
type BadgeService struct {
	userRepo repository.UserRepository
}

type BadgeInput struct {
	AdminID string
	Handle  string
	Badge   string
}

func NewBadgeService(userRepo repository.UserRepository) *BadgeService {
	return &BadgeService{userRepo: userRepo}
}

// RequireAdmin returns FORBIDDEN unless userID belongs to an admin.
func (s *BadgeService) RequireAdmin(ctx context.Context, userID string) error {
	if err := requireCaller(userID); err != nil {
		return err
	}
	ok, err := s.userRepo.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// Grant adds a badge. Granting verified also sets the verification flag.
func (s *BadgeService) Grant(ctx context.Context, in BadgeInput) (*models.User, error) {
	return s.mutate(ctx, in, "grant", func(u *models.User, b models.Badge) error {
		if !u.GrantBadge(b) {
			return models.NewConflictError("User already has this badge")
		}
		return nil
	})
}

// Revoke removes a badge. Revoking verified also clears the verification flag.
func (s *BadgeService) Revoke(ctx context.Context, in BadgeInput) (*models.User, error) {
	return s.mutate(ctx, in, "revoke", func(u *models.User, b models.Badge) error {
		if !u.RevokeBadge(b) {
			return models.NewPreconditionAbsentError("User does not have this badge")
		}
		return nil
	})
}

// mutate checks admin rights before looking at the badge or the target.
func (s *BadgeService) mutate(
	ctx context.Context, in BadgeInput, action string, apply func(*models.User, models.Badge) error,
) (*models.User, error) {
	if err := s.RequireAdmin(ctx, in.AdminID); err != nil {
		return nil, err
	}
	badge, ok := models.ParseBadge(in.Badge)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid badge %q", in.Badge))
	}
	user, err := s.userRepo.MutateBadges(ctx, in.Handle, func(u *models.User) error {
		return apply(u, badge)
	})
	if err != nil {
		return nil, err
	}
	observability.BadgeChanges.WithLabelValues(string(badge), action).Inc()
	return user, nil
}
