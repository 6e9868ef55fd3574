package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// FollowRepository is the relationship ledger: directed, unique follow edges.
type FollowRepository interface {
	// Create inserts the edge; a duplicate yields a CONFLICT AppError.
	Create(ctx context.Context, followerID, followingID string) error
	// Delete removes the edge; a missing edge yields PRECONDITION_ABSENT.
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error)
}

type followRepository struct {
	db   *gorm.DB
	opts options
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB, opts ...Option) FollowRepository {
	return &followRepository{db: db, opts: buildOptions(opts)}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) error {
	err := r.db.WithContext(ctx).Create(&models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error
	return writeErr(err, "Already following this user")
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return writeErr(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return models.NewPreconditionAbsentError("Not following this user")
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return read(ctx, r.opts, func(ctx context.Context) (bool, error) {
		var count int64
		err := r.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&count).Error
		return count > 0, err
	})
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return r.listSide(ctx, "follows.follower_id = users.id", "follows.following_id = ?", userID, limit, offset)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return r.listSide(ctx, "follows.following_id = users.id", "follows.follower_id = ?", userID, limit, offset)
}

// listSide returns the users on the other side of userID's edges, by display name.
func (r *followRepository) listSide(ctx context.Context, join, subject, userID string, limit, offset int) ([]models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]models.User, error) {
		var users []models.User
		err := withUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
			Joins("JOIN follows ON "+join).
			Where(subject, userID).
			Order("users.name ASC, users.id ASC").
			Limit(limit).
			Offset(offset).
			Find(&users).Error
		return users, err
	})
}
