package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

// EngagementService runs the like, retweet and reply-like ledgers. Each call
// returns the live count of its target after the transition.
type EngagementService struct {
	tweetRepo      repository.TweetRepository
	replyRepo      repository.ReplyRepository
	engagementRepo repository.EngagementRepository
	publisher      notifications.Publisher
}

type EngagementInput struct {
	UserID  string
	TweetID string
	ReplyID string
}

func NewEngagementService(
	tweetRepo repository.TweetRepository,
	replyRepo repository.ReplyRepository,
	engagementRepo repository.EngagementRepository,
	publisher notifications.Publisher,
) *EngagementService {
	return &EngagementService{
		tweetRepo:      tweetRepo,
		replyRepo:      replyRepo,
		engagementRepo: engagementRepo,
		publisher:      publisher,
	}
}

func (s *EngagementService) Like(ctx context.Context, in EngagementInput) (int64, error) {
	return s.tweetEdge(ctx, in, "like", "create", s.engagementRepo.Like, notifications.EventLike)
}

func (s *EngagementService) Unlike(ctx context.Context, in EngagementInput) (int64, error) {
	return s.tweetEdge(ctx, in, "like", "remove", s.engagementRepo.Unlike, "")
}

func (s *EngagementService) Retweet(ctx context.Context, in EngagementInput) (int64, error) {
	return s.tweetEdge(ctx, in, "retweet", "create", s.engagementRepo.Retweet, notifications.EventRetweet)
}

func (s *EngagementService) Unretweet(ctx context.Context, in EngagementInput) (int64, error) {
	return s.tweetEdge(ctx, in, "retweet", "remove", s.engagementRepo.Unretweet, "")
}

// LikeReply likes a reply of the tweet in in.TweetID.
func (s *EngagementService) LikeReply(ctx context.Context, in EngagementInput) (int64, error) {
	return s.replyEdge(ctx, in, "create", s.engagementRepo.LikeReply)
}

func (s *EngagementService) UnlikeReply(ctx context.Context, in EngagementInput) (int64, error) {
	return s.replyEdge(ctx, in, "remove", s.engagementRepo.UnlikeReply)
}

type ledgerOp func(ctx context.Context, userID, targetID string) (int64, error)

func (s *EngagementService) tweetEdge(
	ctx context.Context, in EngagementInput, ledger, action string, op ledgerOp, event string,
) (int64, error) {
	if err := requireCaller(in.UserID); err != nil {
		return 0, err
	}
	n, err := op(ctx, in.UserID, in.TweetID)
	recordLedger(ledger, action, err)
	if err != nil {
		return 0, err
	}
	if event != "" && s.publisher != nil {
		if authorID, err := s.tweetRepo.GetAuthorID(ctx, in.TweetID); err == nil {
			s.publisher.Notify(ctx, authorID, notifications.Event{
				Type:    event,
				ActorID: in.UserID,
				TweetID: in.TweetID,
			})
		}
	}
	return n, nil
}

func (s *EngagementService) replyEdge(ctx context.Context, in EngagementInput, action string, op ledgerOp) (int64, error) {
	if err := requireCaller(in.UserID); err != nil {
		return 0, err
	}
	if in.TweetID != "" {
		reply, err := s.replyRepo.GetByID(ctx, in.ReplyID, "")
		if err != nil {
			return 0, err
		}
		if reply.TweetID != in.TweetID {
			return 0, models.NewNotFoundError("Reply", in.ReplyID)
		}
	}
	n, err := op(ctx, in.UserID, in.ReplyID)
	recordLedger("reply_like", action, err)
	return n, err
}
