package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// EngagementRepository holds the like, retweet and reply-like ledgers. Each
// mutation returns the live count for its target after the change.
type EngagementRepository interface {
	Like(ctx context.Context, userID, tweetID string) (int64, error)
	Unlike(ctx context.Context, userID, tweetID string) (int64, error)
	Retweet(ctx context.Context, userID, tweetID string) (int64, error)
	Unretweet(ctx context.Context, userID, tweetID string) (int64, error)
	LikeReply(ctx context.Context, userID, replyID string) (int64, error)
	UnlikeReply(ctx context.Context, userID, replyID string) (int64, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// ledger describes one edge table keyed by (user_id, <target column>).
type ledger struct {
	table    string
	target   string
	resource string
	conflict string
	absent   string
	edge     func(userID, targetID string) interface{}
	exists   func(tx *gorm.DB, id string) (bool, error)
	refresh  func(tx *gorm.DB, id string) error
}

var likeLedger = ledger{
	table:    "likes",
	target:   "tweet_id",
	resource: "Tweet",
	conflict: "Tweet already liked",
	absent:   "Tweet not liked",
	edge: func(userID, targetID string) interface{} {
		return &models.Like{UserID: userID, TweetID: targetID}
	},
	exists:  tweetExists,
	refresh: refreshTweetCounters,
}

var retweetLedger = ledger{
	table:    "retweets",
	target:   "tweet_id",
	resource: "Tweet",
	conflict: "Tweet already retweeted",
	absent:   "Tweet not retweeted",
	edge: func(userID, targetID string) interface{} {
		return &models.Retweet{UserID: userID, TweetID: targetID}
	},
	exists:  tweetExists,
	refresh: refreshTweetCounters,
}

var replyLikeLedger = ledger{
	table:    "reply_likes",
	target:   "reply_id",
	resource: "Reply",
	conflict: "Reply already liked",
	absent:   "Reply not liked",
	edge: func(userID, targetID string) interface{} {
		return &models.ReplyLike{UserID: userID, ReplyID: targetID}
	},
	exists: func(tx *gorm.DB, id string) (bool, error) {
		var count int64
		err := tx.Model(&models.Reply{}).Where("id = ?", id).Count(&count).Error
		return count > 0, err
	},
	refresh: func(*gorm.DB, string) error { return nil },
}

func tweetExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := tx.Model(&models.Tweet{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (l ledger) count(tx *gorm.DB, targetID string) (int64, error) {
	var n int64
	err := tx.Table(l.table).Where(l.target+" = ?", targetID).Count(&n).Error
	return n, err
}

func (l ledger) add(ctx context.Context, db *gorm.DB, userID, targetID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := l.exists(tx, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError(l.resource, targetID)
		}
		if err := tx.Create(l.edge(userID, targetID)).Error; err != nil {
			return err
		}
		if err := l.refresh(tx, targetID); err != nil {
			return err
		}
		n, err = l.count(tx, targetID)
		return err
	})
	return n, writeErr(err, l.conflict)
}

func (l ledger) remove(ctx context.Context, db *gorm.DB, userID, targetID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND "+l.target+" = ?", userID, targetID).
			Delete(l.edge(userID, targetID))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewPreconditionAbsentError(l.absent)
		}
		if err := l.refresh(tx, targetID); err != nil {
			return err
		}
		var err error
		n, err = l.count(tx, targetID)
		return err
	})
	return n, writeErr(err, "")
}

func (r *engagementRepository) Like(ctx context.Context, userID, tweetID string) (int64, error) {
	return likeLedger.add(ctx, r.db, userID, tweetID)
}

func (r *engagementRepository) Unlike(ctx context.Context, userID, tweetID string) (int64, error) {
	return likeLedger.remove(ctx, r.db, userID, tweetID)
}

func (r *engagementRepository) Retweet(ctx context.Context, userID, tweetID string) (int64, error) {
	return retweetLedger.add(ctx, r.db, userID, tweetID)
}

func (r *engagementRepository) Unretweet(ctx context.Context, userID, tweetID string) (int64, error) {
	return retweetLedger.remove(ctx, r.db, userID, tweetID)
}

func (r *engagementRepository) LikeReply(ctx context.Context, userID, replyID string) (int64, error) {
	return replyLikeLedger.add(ctx, r.db, userID, replyID)
}

func (r *engagementRepository) UnlikeReply(ctx context.Context, userID, replyID string) (int64, error) {
	return replyLikeLedger.remove(ctx, r.db, userID, replyID)
}
