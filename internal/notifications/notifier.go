// Package notifications publishes engagement events to per-user Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"chirp/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventFollow  = "follow"
	EventLike    = "like"
	EventRetweet = "retweet"
	EventReply   = "reply"
	EventMention = "mention"
)

const userChannelPrefix = "events:user:"

// Event is the payload delivered to a user's channel.
type Event struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	TweetID   string    `json:"tweet_id,omitempty"`
	ReplyID   string    `json:"reply_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is what services need to emit events.
type Publisher interface {
	Notify(ctx context.Context, recipientID string, event Event)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// Notify publishes event to recipientID. Events are best effort: failures
// are logged and never reach the caller, and self-notifications are dropped.
func (n *Notifier) Notify(ctx context.Context, recipientID string, event Event) {
	if recipientID == "" || recipientID == event.ActorID {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Warn("marshal event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	if err := n.PublishUser(ctx, recipientID, string(payload)); err != nil {
		middleware.Logger.Warn("publish event",
			slog.String("type", event.Type),
			slog.String("recipient_id", recipientID),
			slog.String("error", err.Error()),
		)
	}
}

// StartUserSubscriber subscribes to every user channel and calls onEvent for
// each decoded event until ctx is done.
func (n *Notifier) StartUserSubscriber(
	ctx context.Context, onEvent func(userID string, event Event),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe user events: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Debug("skip malformed event", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onEvent(strings.TrimPrefix(msg.Channel, userChannelPrefix), ev)
				}()
			}
		}
	}()

	return nil
}
