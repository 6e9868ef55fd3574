package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chirp/internal/cache"
	"chirp/internal/extract"
	"chirp/internal/featureflags"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Result sizes.
const (
	SearchUserLimit      = 10
	SearchTweetLimit     = 20
	SearchHashtagScan    = 100
	HashtagTopLimit      = 10
	HashtagTweetLimit    = 50
	TrendingWindow       = 24 * time.Hour
	TrendingScanLimit    = 1000
	DefaultSearchTimeout = 3 * time.Second
)

// Search types.
const (
	SearchAll      = "all"
	SearchUsers    = "users"
	SearchTweets   = "tweets"
	SearchHashtags = "hashtags"
)

// DefaultTrending is served when nothing is trending and the
// trending_defaults flag is on.
var DefaultTrending = []extract.TagCount{
	{Tag: "teknoloji", Count: 42},
	{Tag: "spor", Count: 28},
	{Tag: "müzik", Count: 15},
	{Tag: "siyaset", Count: 12},
	{Tag: "oyun", Count: 8},
}

type SearchService struct {
	userRepo  repository.UserRepository
	tweetRepo repository.TweetRepository
	flags     *featureflags.Manager
	timeout   time.Duration
	now       func() time.Time
}

type SearchInput struct {
	Query    string
	Type     string
	ViewerID string
}

type SearchResults struct {
	Users    []models.User      `json:"users"`
	Tweets   []*models.Tweet    `json:"tweets"`
	Hashtags []extract.TagCount `json:"hashtags"`
}

// TrendingTag is one entry of the trending list.
type TrendingTag struct {
	Tag         string `json:"tag"`
	Count       int    `json:"count"`
	DisplayText string `json:"displayText"`
}

type Trending struct {
	Hashtags []TrendingTag `json:"hashtags"`
	Fallback bool          `json:"fallback"`
}

func NewSearchService(
	userRepo repository.UserRepository,
	tweetRepo repository.TweetRepository,
	flags *featureflags.Manager,
	timeout time.Duration,
) *SearchService {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &SearchService{
		userRepo:  userRepo,
		tweetRepo: tweetRepo,
		flags:     flags,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Search runs a text search over users, tweets and hashtags. An empty query
// yields empty results.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*SearchResults, error) {
	kind := in.Type
	if kind == "" {
		kind = SearchAll
	}
	switch kind {
	case SearchAll, SearchUsers, SearchTweets, SearchHashtags:
	default:
		return nil, models.NewValidationError("type must be one of all, users, tweets, hashtags")
	}

	out := &SearchResults{
		Users:    []models.User{},
		Tweets:   []*models.Tweet{},
		Hashtags: []extract.TagCount{},
	}
	q := strings.TrimSpace(in.Query)
	if q == "" {
		return out, nil
	}

	var err error
	if kind == SearchAll || kind == SearchUsers {
		err = s.timed(ctx, SearchUsers, func(ctx context.Context) error {
			users, err := s.userRepo.Search(ctx, q, SearchUserLimit)
			if users != nil {
				out.Users = users
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	if kind == SearchAll || kind == SearchTweets {
		err = s.timed(ctx, SearchTweets, func(ctx context.Context) error {
			tweets, err := s.tweetRepo.Search(ctx, q, SearchTweetLimit, in.ViewerID)
			if tweets != nil {
				out.Tweets = tweets
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	if kind == SearchAll || kind == SearchHashtags {
		err = s.timed(ctx, SearchHashtags, func(ctx context.Context) error {
			tag := extract.NormalizeTag(q)
			if tag == "" {
				return nil
			}
			texts, err := s.tweetRepo.ContentsMatching(ctx, tag, SearchHashtagScan)
			if err != nil {
				return err
			}
			out.Hashtags = extract.CountHashtags(texts, HashtagTopLimit, func(t string) bool {
				return strings.Contains(t, tag)
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ByHashtag lists the newest tweets containing #tag.
func (s *SearchService) ByHashtag(ctx context.Context, tag, viewerID string) ([]*models.Tweet, error) {
	tag = extract.NormalizeTag(tag)
	if tag == "" {
		return nil, models.NewValidationError("tag is required")
	}
	var tweets []*models.Tweet
	err := s.timed(ctx, "hashtag", func(ctx context.Context) error {
		var err error
		tweets, err = s.tweetRepo.ListByHashtag(ctx, tag, HashtagTweetLimit, viewerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []*models.Tweet{}
	}
	return tweets, nil
}

// Trending counts hashtags used in the last 24 hours. Results are cached;
// the default list stands in when nothing is trending or the read fails and
// the trending_defaults flag is on.
func (s *SearchService) Trending(ctx context.Context) (*Trending, error) {
	var result Trending
	err := cache.Aside(ctx, cache.TrendingKey, &result, cache.TrendingTTL, func() error {
		return s.timed(ctx, "trending", func(ctx context.Context) error {
			texts, err := s.tweetRepo.ContentsSince(ctx, s.now().Add(-TrendingWindow), TrendingScanLimit)
			if err != nil {
				return err
			}
			result = Trending{Hashtags: trendingTags(extract.CountHashtags(texts, HashtagTopLimit, nil))}
			return nil
		})
	})
	if err != nil {
		if s.flags.On(featureflags.TrendingDefaults) {
			observability.TrendingFallbacks.WithLabelValues("error").Inc()
			return &Trending{Hashtags: trendingTags(DefaultTrending), Fallback: true}, nil
		}
		return nil, err
	}
	if len(result.Hashtags) == 0 && s.flags.On(featureflags.TrendingDefaults) {
		observability.TrendingFallbacks.WithLabelValues("empty").Inc()
		return &Trending{Hashtags: trendingTags(DefaultTrending), Fallback: true}, nil
	}
	if result.Hashtags == nil {
		result.Hashtags = []TrendingTag{}
	}
	return &result, nil
}

// timed runs fn under the search timeout inside a span. A deadline or
// exhausted retries become UNAVAILABLE.
func (s *SearchService) timed(ctx context.Context, kind string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "search."+kind, attribute.String("search.type", kind))
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	observability.SearchLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil && !models.HasCode(err, models.CodeUnavailable) &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		err = models.NewUnavailableError(err)
	}
	span.Finish(err)
	return err
}

func trendingTags(counts []extract.TagCount) []TrendingTag {
	out := make([]TrendingTag, 0, len(counts))
	for _, c := range counts {
		out = append(out, TrendingTag{Tag: c.Tag, Count: c.Count, DisplayText: "#" + c.Tag})
	}
	return out
}
