package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"
)

type ReplyService struct {
	tweetRepo repository.TweetRepository
	replyRepo repository.ReplyRepository
	publisher notifications.Publisher
}

type CreateReplyInput struct {
	UserID  string
	TweetID string
	Content string
}

type DeleteReplyInput struct {
	UserID  string
	TweetID string
	ReplyID string
}

func NewReplyService(
	tweetRepo repository.TweetRepository,
	replyRepo repository.ReplyRepository,
	publisher notifications.Publisher,
) *ReplyService {
	return &ReplyService{tweetRepo: tweetRepo, replyRepo: replyRepo, publisher: publisher}
}

// CreateReply attaches a reply to an existing tweet and returns it with its author.
func (s *ReplyService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	if err := requireCaller(in.UserID); err != nil {
		return nil, err
	}
	content, err := validation.Content(in.Content, models.MaxContentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	reply := &models.Reply{TweetID: in.TweetID, UserID: in.UserID, Content: content}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	observability.ContentEvents.WithLabelValues("reply", "create").Inc()

	if s.publisher != nil {
		if authorID, err := s.tweetRepo.GetAuthorID(ctx, in.TweetID); err == nil {
			s.publisher.Notify(ctx, authorID, notifications.Event{
				Type:    notifications.EventReply,
				ActorID: in.UserID,
				TweetID: in.TweetID,
				ReplyID: reply.ID,
			})
		}
	}

	return s.replyRepo.GetByID(ctx, reply.ID, in.UserID)
}

// ListReplies returns a tweet's replies, oldest first.
func (s *ReplyService) ListReplies(ctx context.Context, tweetID, viewerID string) ([]*models.Reply, error) {
	if _, err := s.tweetRepo.GetAuthorID(ctx, tweetID); err != nil {
		return nil, err
	}
	return s.replyRepo.ListByTweet(ctx, tweetID, viewerID)
}

// DeleteReply removes a reply owned by the caller.
func (s *ReplyService) DeleteReply(ctx context.Context, in DeleteReplyInput) error {
	if err := requireCaller(in.UserID); err != nil {
		return err
	}
	reply, err := s.replyRepo.GetByID(ctx, in.ReplyID, "")
	if err != nil {
		return err
	}
	if in.TweetID != "" && reply.TweetID != in.TweetID {
		return models.NewNotFoundError("Reply", in.ReplyID)
	}
	if reply.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own replies")
	}
	if err := s.replyRepo.Delete(ctx, in.ReplyID); err != nil {
		return err
	}
	observability.ContentEvents.WithLabelValues("reply", "delete").Inc()
	return nil
}
