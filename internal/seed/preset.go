package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes the shape of a seeded dataset.
type Preset struct {
	Name            string   `yaml:"name"`
	Users           int      `yaml:"users"`
	TweetsPerUser   int      `yaml:"tweets_per_user"`
	RepliesPerTweet int      `yaml:"replies_per_tweet"`
	FollowRatio     float64  `yaml:"follow_ratio"`
	LikeRatio       float64  `yaml:"like_ratio"`
	RetweetRatio    float64  `yaml:"retweet_ratio"`
	MediaRatio      float64  `yaml:"media_ratio"`
	Hashtags        []string `yaml:"hashtags"`
	MaxDays         int      `yaml:"max_days"`
	Password        string   `yaml:"password"`
	Clean           bool     `yaml:"clean"`
	RandomSeed      int64    `yaml:"random_seed"`
}

// DefaultPreset is a small, lively dataset for local development.
func DefaultPreset() Preset {
	return Preset{
		Name:            "default",
		Users:           25,
		TweetsPerUser:   6,
		RepliesPerTweet: 2,
		FollowRatio:     0.3,
		LikeRatio:       0.2,
		RetweetRatio:    0.05,
		MediaRatio:      0.2,
		Hashtags:        []string{"golang", "teknoloji", "spor", "müzik", "oyun"},
		MaxDays:         3,
		Password:        "Password123!",
		Clean:           true,
	}
}

// LoadPreset reads a YAML preset. Keys missing from the file keep their
// DefaultPreset values.
func LoadPreset(path string) (Preset, error) {
	p := DefaultPreset()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return p, p.Validate()
}

func (p Preset) Validate() error {
	if p.Users < 0 || p.TweetsPerUser < 0 || p.RepliesPerTweet < 0 {
		return fmt.Errorf("preset %q: counts must not be negative", p.Name)
	}
	for name, r := range map[string]float64{
		"follow_ratio":  p.FollowRatio,
		"like_ratio":    p.LikeRatio,
		"retweet_ratio": p.RetweetRatio,
		"media_ratio":   p.MediaRatio,
	} {
		if r < 0 || r > 1 {
			return fmt.Errorf("preset %q: %s must be within [0,1]", p.Name, name)
		}
	}
	if p.Password == "" {
		return fmt.Errorf("preset %q: password is required", p.Name)
	}
	return nil
}
