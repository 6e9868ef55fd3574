package models

import "time"

// Follow is a directed edge; the composite key makes each pair unique.
type Follow struct {
	FollowerID  string    `gorm:"type:varchar(36);primaryKey;check:chk_follows_not_self,follower_id <> following_id" json:"follower_id"`
	FollowingID string    `gorm:"type:varchar(36);primaryKey;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like is one user's like of one tweet.
type Like struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	TweetID   string    `gorm:"type:varchar(36);primaryKey;index" json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Retweet is one user's retweet of one tweet.
type Retweet struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	TweetID   string    `gorm:"type:varchar(36);primaryKey;index" json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplyLike is one user's like of one reply, independent of tweet likes.
type ReplyLike struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	ReplyID   string    `gorm:"type:varchar(36);primaryKey;index" json:"reply_id"`
	CreatedAt time.Time `json:"created_at"`
}
