package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/videotube/account-service/internal/core/domain"
)

const (
	DefaultActivityStream = "account:activity"
	// activityMaxLen caps the stream; trimming is approximate (~).
	activityMaxLen = 10000
)

// ActivityStream publishes account events to a capped Redis stream.
// Entry fields: type, user_id, at (unix millis).
type ActivityStream struct {
	client *redis.Client
	stream string
}

// NewActivityStream wraps the client. An empty stream name falls back to
// DefaultActivityStream.
func NewActivityStream(client *redis.Client, stream string) *ActivityStream {
	if stream == "" {
		stream = DefaultActivityStream
	}
	return &ActivityStream{client: client, stream: stream}
}

// Publish appends the event to the stream.
func (s *ActivityStream) Publish(ctx context.Context, event domain.ActivityEvent) error {
	err := s.client.XAdd(ctx, s.args(event)).Err()
	if err != nil {
		return fmt.Errorf("publish activity %s: %w", event.Type, err)
	}
	return nil
}

func (s *ActivityStream) args(event domain.ActivityEvent) *redis.XAddArgs {
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: activityMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"user_id": event.UserID,
			"at":      at.UnixMilli(),
		},
	}
}
