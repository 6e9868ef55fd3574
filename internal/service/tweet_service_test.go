package service

import (
	"context"
	"strings"
	"testing"

	"chirp/internal/models"
	"chirp/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetService_CreateTweet(t *testing.T) {
	t.Parallel()

	t.Run("extracts hashtags and mentions when omitted", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		var saved *models.Tweet
		tweets.createFn = func(_ context.Context, tw *models.Tweet) error {
			tw.ID = "t1"
			saved = tw
			return nil
		}
		pub := &publisherStub{}
		svc := NewTweetService(noopUserRepo(), tweets, noopReplyRepo(), pub)

		_, err := svc.CreateTweet(context.Background(), CreateTweetInput{
			UserID:  "u1",
			Content: "  hello #World and #world, ping @Bob  ",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "hello #World and #world, ping @Bob", saved.Content)
		assert.Equal(t, []string{"world"}, []string(saved.Hashtags))
		assert.Equal(t, []string{"bob"}, []string(saved.Mentions))

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, notifications.EventMention, events[0].event.Type)
		assert.Equal(t, "bob", events[0].recipient)
	})

	t.Run("caller supplied tags are normalized", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		var saved *models.Tweet
		tweets.createFn = func(_ context.Context, tw *models.Tweet) error {
			saved = tw
			return nil
		}
		svc := NewTweetService(noopUserRepo(), tweets, noopReplyRepo(), nil)
		_, err := svc.CreateTweet(context.Background(), CreateTweetInput{
			UserID:   "u1",
			Content:  "no tags here",
			Hashtags: []string{"#Go", "go", ""},
			Mentions: []string{},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"go"}, []string(saved.Hashtags))
		assert.Empty(t, saved.Mentions)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewTweetService(noopUserRepo(), noopTweetRepo(), noopReplyRepo(), nil)
		cases := []CreateTweetInput{
			{UserID: "u1", Content: "   "},
			{UserID: "u1", Content: strings.Repeat("a", models.MaxContentLength+1)},
			{UserID: "u1", Content: "pics", Images: []string{"1", "2", "3", "4", "5"}},
		}
		for _, in := range cases {
			_, err := svc.CreateTweet(context.Background(), in)
			assert.True(t, models.HasCode(err, models.CodeValidation), "input %+v", in.Images)
		}
	})

	t.Run("280 multibyte characters are accepted", func(t *testing.T) {
		t.Parallel()
		svc := NewTweetService(noopUserRepo(), noopTweetRepo(), noopReplyRepo(), nil)
		_, err := svc.CreateTweet(context.Background(), CreateTweetInput{
			UserID:  "u1",
			Content: strings.Repeat("ü", models.MaxContentLength),
		})
		assert.NoError(t, err)
	})
}

func TestTweetService_DeleteTweet(t *testing.T) {
	t.Parallel()

	t.Run("non-author is forbidden and nothing is deleted", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		tweets.getAuthorIDFn = func(_ context.Context, _ string) (string, error) { return "owner", nil }
		tweets.deleteFn = func(_ context.Context, _ string) error {
			t.Fatal("delete must not run")
			return nil
		}
		svc := NewTweetService(noopUserRepo(), tweets, noopReplyRepo(), nil)
		err := svc.DeleteTweet(context.Background(), DeleteTweetInput{UserID: "intruder", TweetID: "t1"})
		assert.True(t, models.HasCode(err, models.CodeForbidden))
	})

	t.Run("author deletes", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		tweets.getAuthorIDFn = func(_ context.Context, _ string) (string, error) { return "owner", nil }
		deleted := ""
		tweets.deleteFn = func(_ context.Context, id string) error {
			deleted = id
			return nil
		}
		svc := NewTweetService(noopUserRepo(), tweets, noopReplyRepo(), nil)
		require.NoError(t, svc.DeleteTweet(context.Background(), DeleteTweetInput{UserID: "owner", TweetID: "t1"}))
		assert.Equal(t, "t1", deleted)
	})

	t.Run("missing tweet is not found", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		tweets.getAuthorIDFn = func(_ context.Context, id string) (string, error) {
			return "", models.NewNotFoundError("Tweet", id)
		}
		svc := NewTweetService(noopUserRepo(), tweets, noopReplyRepo(), nil)
		err := svc.DeleteTweet(context.Background(), DeleteTweetInput{UserID: "owner", TweetID: "gone"})
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestTweetService_Timeline(t *testing.T) {
	t.Parallel()

	t.Run("routes each tab", func(t *testing.T) {
		t.Parallel()
		tweets := noopTweetRepo()
		var called []string
		tweets.listByAuthorFn = func(_ context.Context, _ string, limit int, _ string) ([]*models.Tweet, error) {
			assert.Equal(t, TimelineLimit, limit)
			called = append(called, TabTweets)
			return nil, nil
		}
		tweets.listMediaByAuthorFn = func(_ context.Context, _ string, _ int, _ string) ([]*models.Tweet, error) {
			called = append(called, TabMedia)
			return nil, nil
		}
		tweets.listLikedByFn = func(_ context.Context, _ string, _ int, _ string) ([]*models.Tweet, error) {
			called = append(called, TabLikes)
			return nil, nil
		}
		replies := noopReplyRepo()
		replies.listByAuthorFn = func(_ context.Context, _ string, _ int, _ string) ([]*models.Reply, error) {
			called = append(called, TabReplies)
			return []*models.Reply{{ID: "r1"}}, nil
		}
		svc := NewTweetService(noopUserRepo(), tweets, replies, nil)

		for _, tab := range []string{"", TabMedia, TabLikes, TabReplies} {
			tl, err := svc.Timeline(context.Background(), TimelineInput{Handle: "bob", Tab: tab})
			require.NoError(t, err)
			if tab == TabReplies {
				assert.Len(t, tl.Replies, 1)
			}
		}
		assert.Equal(t, []string{TabTweets, TabMedia, TabLikes, TabReplies}, called)
	})

	t.Run("unknown tab is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewTweetService(noopUserRepo(), noopTweetRepo(), noopReplyRepo(), nil)
		_, err := svc.Timeline(context.Background(), TimelineInput{Handle: "bob", Tab: "bogus"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})
}
