package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// ActivityRecorder accepts account events without blocking the caller.
type ActivityRecorder interface {
	Record(event domain.ActivityEvent)
}

// ActivityPublisher writes a single event to the downstream stream.
type ActivityPublisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
}
