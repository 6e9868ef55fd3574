package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxContentLength bounds tweet and reply text, in characters.
const MaxContentLength = 280

// Tweet is a post. Content is immutable after creation.
type Tweet struct {
	ID        string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string                      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string                      `gorm:"type:varchar(280);not null" json:"content"`
	Location  *string                     `gorm:"type:varchar(100)" json:"location,omitempty"`
	Images    datatypes.JSONSlice[string] `json:"images"`
	Hashtags  datatypes.JSONSlice[string] `json:"hashtags"`
	Mentions  datatypes.JSONSlice[string] `json:"mentions"`
	CreatedAt time.Time                   `gorm:"index" json:"created_at"`

	// Stored counters are a display cache refreshed with each ledger change.
	LikeCount    int `gorm:"not null;default:0" json:"-"`
	RetweetCount int `gorm:"not null;default:0" json:"-"`
	ReplyCount   int `gorm:"not null;default:0" json:"-"`

	LikesCount    int64 `gorm:"->;-:migration" json:"likes_count"`
	RetweetsCount int64 `gorm:"->;-:migration" json:"retweets_count"`
	RepliesCount  int64 `gorm:"->;-:migration" json:"replies_count"`
	Liked         bool  `gorm:"->;-:migration" json:"liked"`
	Retweeted     bool  `gorm:"->;-:migration" json:"retweeted"`
}

func (t *Tweet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Images == nil {
		t.Images = datatypes.JSONSlice[string]{}
	}
	if t.Hashtags == nil {
		t.Hashtags = datatypes.JSONSlice[string]{}
	}
	if t.Mentions == nil {
		t.Mentions = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Reply is a comment attached to a tweet, with its own like ledger.
type Reply struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TweetID   string    `gorm:"type:varchar(36);not null;index" json:"tweet_id"`
	Tweet     *Tweet    `gorm:"foreignKey:TweetID" json:"tweet,omitempty"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:varchar(280);not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	LikesCount int64 `gorm:"->;-:migration" json:"likes_count"`
	Liked      bool  `gorm:"->;-:migration" json:"liked"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
