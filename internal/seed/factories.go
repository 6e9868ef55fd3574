// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"chirp/internal/extract"
	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	hashtags []string
	maxDays  int
	now      func() time.Time
	seq      int
}

// NewFactory creates a Factory bound to db. A zero randomSeed picks a random one.
func NewFactory(db *gorm.DB, randomSeed int64, hashtags []string, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 1
	}
	return &Factory{
		db:       db,
		faker:    gofakeit.New(randomSeed),
		hashtags: hashtags,
		maxDays:  maxDays,
		now:      time.Now,
	}
}

// BuildUser returns an unsaved user with a valid, unique-per-factory username.
func (f *Factory) BuildUser(passwordHash string) *models.User {
	f.seq++
	base := usernameStrip.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	if len(base) > 22 {
		base = base[:22]
	}
	if len(base) < 3 {
		base = "user"
	}
	username := fmt.Sprintf("%s_%d", base, f.seq)

	return &models.User{
		Username: &username,
		Email:    username + "@" + f.faker.DomainName(),
		Password: passwordHash,
		Name:     truncate(f.faker.Name(), 50),
		Bio:      truncate(f.faker.HipsterSentence(8), 160),
		Location: truncate(f.faker.City(), 30),
		Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
	}
}

// BuildTweet returns an unsaved tweet by author. Hashtags and mentions are
// extracted from the generated text the same way the API does it.
func (f *Factory) BuildTweet(author *models.User, withMedia bool) *models.Tweet {
	text := f.faker.HipsterSentence(f.faker.Number(4, 14))
	if len(f.hashtags) > 0 && f.faker.Bool() {
		text += " #" + f.hashtags[f.faker.Number(0, len(f.hashtags)-1)]
	}
	text = truncate(text, models.MaxContentLength)

	tweet := &models.Tweet{
		UserID:    author.ID,
		Content:   text,
		Hashtags:  datatypes.JSONSlice[string](extract.Hashtags(text)),
		Mentions:  datatypes.JSONSlice[string](extract.Mentions(text)),
		CreatedAt: f.pastTime(),
	}
	if withMedia {
		tweet.Images = datatypes.JSONSlice[string]{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		}
	}
	return tweet
}

// BuildReply returns an unsaved reply to tweet, dated after the tweet.
func (f *Factory) BuildReply(author *models.User, tweet *models.Tweet) *models.Reply {
	created := tweet.CreatedAt.Add(time.Duration(f.faker.Number(1, 180)) * time.Minute)
	if created.After(f.now()) {
		created = f.now()
	}
	return &models.Reply{
		TweetID:   tweet.ID,
		UserID:    author.ID,
		Content:   truncate(f.faker.Sentence(f.faker.Number(3, 12)), models.MaxContentLength),
		CreatedAt: created,
	}
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return p > 0 && f.faker.Float64Range(0, 1) < p
}

// CreateUser persists a generated user.
func (f *Factory) CreateUser(passwordHash string, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(passwordHash)
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTweet persists a generated tweet.
func (f *Factory) CreateTweet(author *models.User, withMedia bool) (*models.Tweet, error) {
	tweet := f.BuildTweet(author, withMedia)
	if err := f.db.Create(tweet).Error; err != nil {
		return nil, err
	}
	return tweet, nil
}

// CreateReply persists a generated reply.
func (f *Factory) CreateReply(author *models.User, tweet *models.Tweet) (*models.Reply, error) {
	reply := f.BuildReply(author, tweet)
	if err := f.db.Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

func (f *Factory) Follow(follower, followee *models.User) error {
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: followee.ID}).Error
}

func (f *Factory) Like(user *models.User, tweet *models.Tweet) error {
	return f.db.Create(&models.Like{UserID: user.ID, TweetID: tweet.ID}).Error
}

func (f *Factory) Retweet(user *models.User, tweet *models.Tweet) error {
	return f.db.Create(&models.Retweet{UserID: user.ID, TweetID: tweet.ID}).Error
}

// pastTime spreads timestamps over the last maxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60-1)) * time.Minute
	return f.now().Add(-back).UTC()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}
