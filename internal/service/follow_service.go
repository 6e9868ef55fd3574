package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

// MaxListLimit bounds follower and following pages.
const MaxListLimit = 100

type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	publisher  notifications.Publisher
}

type ListFollowsInput struct {
	Handle string
	Limit  int
	Offset int
}

func NewFollowService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	publisher notifications.Publisher,
) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo, publisher: publisher}
}

// Follow creates the edge followerID -> handle.
func (s *FollowService) Follow(ctx context.Context, followerID, handle string) (*models.User, error) {
	if err := requireCaller(followerID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	err = s.followRepo.Create(ctx, followerID, target.ID)
	recordLedger("follow", "create", err)
	if err != nil {
		return nil, err
	}
	notify(ctx, s.publisher, target.ID, notifications.Event{
		Type:    notifications.EventFollow,
		ActorID: followerID,
	})

	// Re-read so the counters include the new edge. The edge is committed,
	// so a failed re-read still reports success.
	if fresh, err := s.userRepo.GetByID(ctx, target.ID); err == nil && fresh != nil {
		return fresh, nil
	}
	return target, nil
}

// Unfollow removes the edge; PRECONDITION_ABSENT when it does not exist.
func (s *FollowService) Unfollow(ctx context.Context, followerID, handle string) error {
	if err := requireCaller(followerID); err != nil {
		return err
	}
	target, err := s.userRepo.Resolve(ctx, handle)
	if err != nil {
		return err
	}
	err = s.followRepo.Delete(ctx, followerID, target.ID)
	recordLedger("follow", "remove", err)
	return err
}

// IsFollowing is false for anonymous callers, whatever the handle.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, handle string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	target, err := s.userRepo.Resolve(ctx, handle)
	if err != nil {
		return false, err
	}
	if followerID == target.ID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, target.ID)
}

func (s *FollowService) Followers(ctx context.Context, in ListFollowsInput) ([]models.User, error) {
	user, err := s.userRepo.Resolve(ctx, in.Handle)
	if err != nil {
		return nil, err
	}
	limit, offset := clampPage(in.Limit, in.Offset)
	return s.followRepo.ListFollowers(ctx, user.ID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, in ListFollowsInput) ([]models.User, error) {
	user, err := s.userRepo.Resolve(ctx, in.Handle)
	if err != nil {
		return nil, err
	}
	limit, offset := clampPage(in.Limit, in.Offset)
	return s.followRepo.ListFollowing(ctx, user.ID, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
