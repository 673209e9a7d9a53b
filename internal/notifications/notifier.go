// Package notifications streams post-scoped comment events to live readers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	postChannelPrefix  = "feed:post:"
	postChannelPattern = postChannelPrefix + "*"
)

// Event is the envelope written to the feed channel and forwarded verbatim
// to websocket clients.
type Event struct {
	Type    string          `json:"type"`
	PostID  uint            `json:"post"`
	Payload json.RawMessage `json:"payload"`
}

// PostChannel returns the redis channel carrying events of a post.
func PostChannel(postID uint) string {
	return fmt.Sprintf("%s%d", postChannelPrefix, postID)
}

// postIDFromChannel parses feed:post:<id>.
func postIDFromChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, postChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// Notifier publishes feed events into redis. A nil client makes it a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Encode builds the JSON envelope for an event.
func Encode(postID uint, eventType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Event{Type: eventType, PostID: postID, Payload: body})
}

// PublishEvent sends one event to the post's channel.
func (n *Notifier) PublishEvent(ctx context.Context, postID uint, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	msg, err := Encode(postID, eventType, payload)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, PostChannel(postID), msg).Err()
}

// Publish is the fire-and-forget form used by the services. Failures are
// logged and never reach the request.
func (n *Notifier) Publish(ctx context.Context, postID uint, eventType string, payload any) {
	if err := n.PublishEvent(ctx, postID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "feed publish failed",
			"post_id", postID,
			"event_type", eventType,
			"error", err,
		)
	}
}

// StartPatternSubscriber subscribes to every post channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, postChannelPattern)
	// Wait for the subscription so events published right after start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", postChannelPattern, err)
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
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in feed subscriber",
								"panic", r,
								"stack", string(debug.Stack()),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
