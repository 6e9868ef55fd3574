package service

import (
	"context"
	"testing"

	"chirp/internal/models"
	"chirp/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_Like(t *testing.T) {
	t.Parallel()

	t.Run("returns the live count and notifies the author", func(t *testing.T) {
		t.Parallel()
		pub := &publisherStub{}
		svc := NewEngagementService(noopTweetRepo(), noopReplyRepo(), noopEngagementRepo(), pub)
		n, err := svc.Like(context.Background(), EngagementInput{UserID: "fan", TweetID: "t1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, "author", events[0].recipient)
		assert.Equal(t, notifications.EventLike, events[0].event.Type)
	})

	t.Run("duplicate like is a conflict and publishes nothing", func(t *testing.T) {
		t.Parallel()
		repo := noopEngagementRepo()
		repo.likeFn = func(_ context.Context, _, _ string) (int64, error) {
			return 0, models.NewConflictError("Tweet already liked")
		}
		pub := &publisherStub{}
		svc := NewEngagementService(noopTweetRepo(), noopReplyRepo(), repo, pub)
		_, err := svc.Like(context.Background(), EngagementInput{UserID: "fan", TweetID: "t1"})
		assert.True(t, models.HasCode(err, models.CodeConflict))
		assert.Empty(t, pub.published())
	})

	t.Run("unlike does not notify", func(t *testing.T) {
		t.Parallel()
		pub := &publisherStub{}
		svc := NewEngagementService(noopTweetRepo(), noopReplyRepo(), noopEngagementRepo(), pub)
		n, err := svc.Unlike(context.Background(), EngagementInput{UserID: "fan", TweetID: "t1"})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, pub.published())
	})

	t.Run("anonymous callers are rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewEngagementService(noopTweetRepo(), noopReplyRepo(), noopEngagementRepo(), nil)
		_, err := svc.Retweet(context.Background(), EngagementInput{TweetID: "t1"})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})
}

func TestEngagementService_ReplyLikeChecksParent(t *testing.T) {
	t.Parallel()
	svc := NewEngagementService(noopTweetRepo(), noopReplyRepo(), noopEngagementRepo(), nil)

	_, err := svc.LikeReply(context.Background(), EngagementInput{UserID: "u", TweetID: "other", ReplyID: "r1"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	n, err := svc.LikeReply(context.Background(), EngagementInput{UserID: "u", TweetID: "tweet-1", ReplyID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
