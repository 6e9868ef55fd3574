package seed

import (
	"fmt"
	"log/slog"

	"chirp/internal/middleware"
	"chirp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Follows  int
	Tweets   int
	Likes    int
	Retweets int
	Replies  int
}

// Seeder populates the database from a Preset.
type Seeder struct {
	db         *gorm.DB
	bcryptCost int
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, bcryptCost: bcrypt.DefaultCost}
}

// ClearAll removes every row, ledgers first.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.ReplyLike{}, &models.Like{}, &models.Retweet{}, &models.Follow{},
		&models.Reply{}, &models.Tweet{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds users, the follow graph, tweets, engagement and replies, then
// brings the stored tweet counters in line with the ledgers.
func (s *Seeder) Run(p Preset) (Summary, error) {
	var sum Summary
	if err := p.Validate(); err != nil {
		return sum, err
	}
	if p.Clean {
		if err := s.ClearAll(); err != nil {
			return sum, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return sum, fmt.Errorf("hash seed password: %w", err)
	}
	f := NewFactory(s.db, p.RandomSeed, p.Hashtags, p.MaxDays)

	users := make([]*models.User, 0, p.Users)
	for i := 0; i < p.Users; i++ {
		u, err := f.CreateUser(string(hash))
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID || !f.Chance(p.FollowRatio) {
				continue
			}
			if err := f.Follow(a, b); err != nil {
				return sum, fmt.Errorf("follow: %w", err)
			}
			sum.Follows++
		}
	}

	tweets := make([]*models.Tweet, 0, p.Users*p.TweetsPerUser)
	for _, u := range users {
		for i := 0; i < p.TweetsPerUser; i++ {
			t, err := f.CreateTweet(u, f.Chance(p.MediaRatio))
			if err != nil {
				return sum, fmt.Errorf("create tweet: %w", err)
			}
			tweets = append(tweets, t)
		}
	}
	sum.Tweets = len(tweets)

	for _, t := range tweets {
		for _, u := range users {
			if f.Chance(p.LikeRatio) {
				if err := f.Like(u, t); err != nil {
					return sum, fmt.Errorf("like: %w", err)
				}
				sum.Likes++
			}
			if u.ID != t.UserID && f.Chance(p.RetweetRatio) {
				if err := f.Retweet(u, t); err != nil {
					return sum, fmt.Errorf("retweet: %w", err)
				}
				sum.Retweets++
			}
		}
		if len(users) == 0 {
			continue
		}
		for i := 0; i < p.RepliesPerTweet; i++ {
			author := users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateReply(author, t); err != nil {
				return sum, fmt.Errorf("create reply: %w", err)
			}
			sum.Replies++
		}
	}

	if err := s.syncCounters(); err != nil {
		return sum, err
	}

	middleware.Logger.Info("seed complete",
		slog.String("preset", p.Name),
		slog.Int("users", sum.Users),
		slog.Int("follows", sum.Follows),
		slog.Int("tweets", sum.Tweets),
		slog.Int("likes", sum.Likes),
		slog.Int("retweets", sum.Retweets),
		slog.Int("replies", sum.Replies),
	)
	return sum, nil
}

// syncCounters rewrites every stored tweet counter from its ledger.
func (s *Seeder) syncCounters() error {
	return s.db.Exec(`UPDATE tweets SET
		like_count = (SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id),
		retweet_count = (SELECT COUNT(*) FROM retweets WHERE retweets.tweet_id = tweets.id),
		reply_count = (SELECT COUNT(*) FROM replies WHERE replies.tweet_id = tweets.id)`).Error
}
