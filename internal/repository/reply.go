package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository stores replies; each change refreshes the parent's reply counter.
type ReplyRepository interface {
	// Create stores the reply, or NOT_FOUND when the parent tweet is gone.
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Reply, error)
	ListByTweet(ctx context.Context, tweetID, viewerID string) ([]*models.Reply, error)
	ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Reply, error)
	Delete(ctx context.Context, id string) error
}

type replyRepository struct {
	db   *gorm.DB
	opts options
}

// NewReplyRepository creates a new reply repository
func NewReplyRepository(db *gorm.DB, opts ...Option) ReplyRepository {
	return &replyRepository{db: db, opts: buildOptions(opts)}
}

func applyReplyDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "replies.*, " +
		"(SELECT COUNT(*) FROM reply_likes WHERE reply_likes.reply_id = replies.id) AS likes_count"
	if viewerID != "" {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM reply_likes WHERE reply_likes.reply_id = replies.id AND reply_likes.user_id = ?) AS liked",
			viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (r *replyRepository) base(ctx context.Context, viewerID string) *gorm.DB {
	return applyReplyDetails(r.db.WithContext(ctx).Model(&models.Reply{}), viewerID).
		Preload("User")
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := tweetExists(tx, reply.TweetID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Tweet", reply.TweetID)
		}
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return refreshTweetCounters(tx, reply.TweetID)
	})
	return writeErr(err, "")
}

func (r *replyRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Reply, error) {
	return read(ctx, r.opts, func(ctx context.Context) (*models.Reply, error) {
		var reply models.Reply
		if err := r.base(ctx, viewerID).Where("replies.id = ?", id).Take(&reply).Error; err != nil {
			return nil, notFound(err, "Reply", id)
		}
		return &reply, nil
	})
}

func (r *replyRepository) ListByTweet(ctx context.Context, tweetID, viewerID string) ([]*models.Reply, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]*models.Reply, error) {
		var replies []*models.Reply
		err := r.base(ctx, viewerID).
			Where("replies.tweet_id = ?", tweetID).
			Order("replies.created_at ASC, replies.id ASC").
			Find(&replies).Error
		return replies, err
	})
}

func (r *replyRepository) ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Reply, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]*models.Reply, error) {
		var replies []*models.Reply
		err := r.base(ctx, viewerID).
			Preload("Tweet.User").
			Where("replies.user_id = ?", authorID).
			Order("replies.created_at DESC, replies.id DESC").
			Limit(limit).
			Find(&replies).Error
		return replies, err
	})
}

func (r *replyRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.Reply
		if err := tx.Select("id", "tweet_id").Where("id = ?", id).Take(&reply).Error; err != nil {
			return notFound(err, "Reply", id)
		}
		if err := tx.Where("reply_id = ?", id).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return refreshTweetCounters(tx, reply.TweetID)
	})
	return writeErr(err, "")
}
