package service

import (
	"context"
	"strings"

	"chirp/internal/cache"
	"chirp/internal/extract"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"gorm.io/datatypes"
)

// TimelineLimit bounds every profile tab.
const TimelineLimit = 50

// Profile tabs.
const (
	TabTweets  = "tweets"
	TabReplies = "replies"
	TabMedia   = "media"
	TabLikes   = "likes"
)

type TweetService struct {
	userRepo  repository.UserRepository
	tweetRepo repository.TweetRepository
	replyRepo repository.ReplyRepository
	publisher notifications.Publisher
}

type CreateTweetInput struct {
	UserID   string
	Content  string
	Location string
	Images   []string
	// Hashtags and Mentions are extracted from Content when nil.
	Hashtags []string
	Mentions []string
}

type ListTweetsInput struct {
	Limit    int
	Offset   int
	ViewerID string
}

type DeleteTweetInput struct {
	UserID  string
	TweetID string
}

type TimelineInput struct {
	Handle   string
	Tab      string
	ViewerID string
}

// Timeline holds one profile tab; Replies is set for the replies tab only.
type Timeline struct {
	Tab     string
	Tweets  []*models.Tweet
	Replies []*models.Reply
}

func NewTweetService(
	userRepo repository.UserRepository,
	tweetRepo repository.TweetRepository,
	replyRepo repository.ReplyRepository,
	publisher notifications.Publisher,
) *TweetService {
	return &TweetService{
		userRepo:  userRepo,
		tweetRepo: tweetRepo,
		replyRepo: replyRepo,
		publisher: publisher,
	}
}

func (s *TweetService) CreateTweet(ctx context.Context, in CreateTweetInput) (*models.Tweet, error) {
	if err := requireCaller(in.UserID); err != nil {
		return nil, err
	}
	content, err := validation.Content(in.Content, models.MaxContentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) > validation.MaxMediaPerPost {
		return nil, models.NewValidationError("At most 4 images can be attached")
	}

	hashtags := normalizeTags(in.Hashtags)
	if in.Hashtags == nil {
		hashtags = extract.Hashtags(content)
	}
	mentions := normalizeMentions(in.Mentions)
	if in.Mentions == nil {
		mentions = extract.Mentions(content)
	}

	tweet := &models.Tweet{
		UserID:   in.UserID,
		Content:  content,
		Images:   datatypes.JSONSlice[string](images),
		Hashtags: datatypes.JSONSlice[string](hashtags),
		Mentions: datatypes.JSONSlice[string](mentions),
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		tweet.Location = &loc
	}

	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	observability.ContentEvents.WithLabelValues("tweet", "create").Inc()
	if len(hashtags) > 0 {
		cache.InvalidateTrending(ctx)
	}
	s.notifyMentions(ctx, in.UserID, tweet.ID, mentions)

	return s.tweetRepo.GetByID(ctx, tweet.ID, in.UserID)
}

func (s *TweetService) notifyMentions(ctx context.Context, actorID, tweetID string, mentions []string) {
	if s.publisher == nil {
		return
	}
	for _, m := range mentions {
		u, err := s.userRepo.Resolve(ctx, m)
		if err != nil {
			continue
		}
		s.publisher.Notify(ctx, u.ID, notifications.Event{
			Type:    notifications.EventMention,
			ActorID: actorID,
			TweetID: tweetID,
		})
	}
}

func (s *TweetService) GetTweet(ctx context.Context, id, viewerID string) (*models.Tweet, error) {
	return s.tweetRepo.GetByID(ctx, id, viewerID)
}

func (s *TweetService) ListTweets(ctx context.Context, in ListTweetsInput) ([]*models.Tweet, error) {
	limit, offset := clampPage(in.Limit, in.Offset)
	return s.tweetRepo.List(ctx, limit, offset, in.ViewerID)
}

// DeleteTweet removes a tweet owned by the caller. The ownership check runs
// before anything is deleted.
func (s *TweetService) DeleteTweet(ctx context.Context, in DeleteTweetInput) error {
	if err := requireCaller(in.UserID); err != nil {
		return err
	}
	authorID, err := s.tweetRepo.GetAuthorID(ctx, in.TweetID)
	if err != nil {
		return err
	}
	if authorID != in.UserID {
		return models.NewForbiddenError("You can only delete your own tweets")
	}
	if err := s.tweetRepo.Delete(ctx, in.TweetID); err != nil {
		return err
	}
	observability.ContentEvents.WithLabelValues("tweet", "delete").Inc()
	cache.InvalidateTrending(ctx)
	return nil
}

// Timeline lists one profile tab for the user addressed by handle.
func (s *TweetService) Timeline(ctx context.Context, in TimelineInput) (*Timeline, error) {
	tab := in.Tab
	if tab == "" {
		tab = TabTweets
	}
	switch tab {
	case TabTweets, TabReplies, TabMedia, TabLikes:
	default:
		return nil, models.NewValidationError("type must be one of tweets, replies, media, likes")
	}

	user, err := s.userRepo.Resolve(ctx, in.Handle)
	if err != nil {
		return nil, err
	}

	out := &Timeline{Tab: tab}
	switch tab {
	case TabReplies:
		out.Replies, err = s.replyRepo.ListByAuthor(ctx, user.ID, TimelineLimit, in.ViewerID)
	case TabMedia:
		out.Tweets, err = s.tweetRepo.ListMediaByAuthor(ctx, user.ID, TimelineLimit, in.ViewerID)
	case TabLikes:
		out.Tweets, err = s.tweetRepo.ListLikedBy(ctx, user.ID, TimelineLimit, in.ViewerID)
	default:
		out.Tweets, err = s.tweetRepo.ListByAuthor(ctx, user.ID, TimelineLimit, in.ViewerID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = extract.NormalizeTag(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeMentions(mentions []string) []string {
	out := make([]string, 0, len(mentions))
	seen := make(map[string]struct{}, len(mentions))
	for _, m := range mentions {
		m = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(m), "@"))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
