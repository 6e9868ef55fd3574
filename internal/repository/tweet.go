package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// TweetRepository is the content store for tweets. Every tweet it returns
// carries live like, retweet and reply counts read from the ledgers.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Tweet, error)
	// GetAuthorID returns the author of a tweet, or NOT_FOUND.
	GetAuthorID(ctx context.Context, id string) (string, error)
	List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Tweet, error)
	ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error)
	ListMediaByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error)
	ListLikedBy(ctx context.Context, userID string, limit int, viewerID string) ([]*models.Tweet, error)
	Search(ctx context.Context, query string, limit int, viewerID string) ([]*models.Tweet, error)
	ListByHashtag(ctx context.Context, tag string, limit int, viewerID string) ([]*models.Tweet, error)
	// ContentsMatching returns the text of the newest tweets containing query.
	ContentsMatching(ctx context.Context, query string, limit int) ([]string, error)
	// ContentsSince returns the text of tweets created at or after since.
	ContentsSince(ctx context.Context, since time.Time, limit int) ([]string, error)
	// Delete removes the tweet with its likes, retweets, replies and reply likes.
	Delete(ctx context.Context, id string) error
}

type tweetRepository struct {
	db   *gorm.DB
	opts options
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB, opts ...Option) TweetRepository {
	return &tweetRepository{db: db, opts: buildOptions(opts)}
}

// applyTweetDetails selects live counts and, for a signed-in viewer, whether
// they liked or retweeted each tweet.
func applyTweetDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "tweets.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM retweets WHERE retweets.tweet_id = tweets.id) AS retweets_count, " +
		"(SELECT COUNT(*) FROM replies WHERE replies.tweet_id = tweets.id) AS replies_count"

	if viewerID != "" {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.tweet_id = tweets.id AND likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM retweets WHERE retweets.tweet_id = tweets.id AND retweets.user_id = ?) AS retweeted",
			viewerID, viewerID)
	}
	return db.Select(selectQuery + ", false AS liked, false AS retweeted")
}

// refreshTweetCounters rewrites the stored counters of a tweet from its ledgers.
func refreshTweetCounters(tx *gorm.DB, tweetID string) error {
	return tx.Exec(`UPDATE tweets SET
		like_count = (SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id),
		retweet_count = (SELECT COUNT(*) FROM retweets WHERE retweets.tweet_id = tweets.id),
		reply_count = (SELECT COUNT(*) FROM replies WHERE replies.tweet_id = tweets.id)
		WHERE id = ?`, tweetID).Error
}

func (r *tweetRepository) base(ctx context.Context, viewerID string) *gorm.DB {
	return applyTweetDetails(r.db.WithContext(ctx).Model(&models.Tweet{}), viewerID).
		Preload("User")
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	return writeErr(r.db.WithContext(ctx).Create(tweet).Error, "")
}

func (r *tweetRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Tweet, error) {
	return read(ctx, r.opts, func(ctx context.Context) (*models.Tweet, error) {
		var tweet models.Tweet
		if err := r.base(ctx, viewerID).Where("tweets.id = ?", id).Take(&tweet).Error; err != nil {
			return nil, notFound(err, "Tweet", id)
		}
		return &tweet, nil
	})
}

func (r *tweetRepository) GetAuthorID(ctx context.Context, id string) (string, error) {
	return read(ctx, r.opts, func(ctx context.Context) (string, error) {
		var tweet models.Tweet
		if err := r.db.WithContext(ctx).Select("id", "user_id").Where("id = ?", id).Take(&tweet).Error; err != nil {
			return "", notFound(err, "Tweet", id)
		}
		return tweet.UserID, nil
	})
}

func (r *tweetRepository) find(ctx context.Context, q func(*gorm.DB) *gorm.DB, viewerID string) ([]*models.Tweet, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]*models.Tweet, error) {
		var tweets []*models.Tweet
		err := q(r.base(ctx, viewerID)).Find(&tweets).Error
		return tweets, err
	})
}

func (r *tweetRepository) List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Tweet, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("tweets.created_at DESC, tweets.id DESC").Limit(limit).Offset(offset)
	}, viewerID)
}

func (r *tweetRepository) ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("tweets.user_id = ?", authorID).
			Order("tweets.created_at DESC, tweets.id DESC").
			Limit(limit)
	}, viewerID)
}

func (r *tweetRepository) ListMediaByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("tweets.user_id = ?", authorID).
			Where("tweets.images IS NOT NULL AND tweets.images <> '[]' AND tweets.images <> 'null'").
			Order("tweets.created_at DESC, tweets.id DESC").
			Limit(limit)
	}, viewerID)
}

func (r *tweetRepository) ListLikedBy(ctx context.Context, userID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN likes AS liker ON liker.tweet_id = tweets.id AND liker.user_id = ?", userID).
			Order("liker.created_at DESC, tweets.id DESC").
			Limit(limit)
	}, viewerID)
}

func (r *tweetRepository) Search(ctx context.Context, query string, limit int, viewerID string) ([]*models.Tweet, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(tweets.content) LIKE ? ESCAPE '\'`, containsPattern(query)).
			Order("tweets.created_at DESC, tweets.id DESC").
			Limit(limit)
	}, viewerID)
}

func (r *tweetRepository) ListByHashtag(ctx context.Context, tag string, limit int, viewerID string) ([]*models.Tweet, error) {
	return r.Search(ctx, "#"+tag, limit, viewerID)
}

func (r *tweetRepository) ContentsMatching(ctx context.Context, query string, limit int) ([]string, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]string, error) {
		var contents []string
		err := r.db.WithContext(ctx).Model(&models.Tweet{}).
			Where(`LOWER(content) LIKE ? ESCAPE '\'`, containsPattern(query)).
			Order("created_at DESC").
			Limit(limit).
			Pluck("content", &contents).Error
		return contents, err
	})
}

func (r *tweetRepository) ContentsSince(ctx context.Context, since time.Time, limit int) ([]string, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]string, error) {
		var contents []string
		err := r.db.WithContext(ctx).Model(&models.Tweet{}).
			Where("created_at >= ?", since.UTC()).
			Order("created_at DESC").
			Limit(limit).
			Pluck("content", &contents).Error
		return contents, err
	})
}

func (r *tweetRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&models.Reply{}).Select("id").Where("tweet_id = ?", id)
		if err := tx.Where("reply_id IN (?)", replyIDs).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Retweet{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Tweet{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Tweet", id)
		}
		return nil
	})
	return writeErr(err, "")
}
