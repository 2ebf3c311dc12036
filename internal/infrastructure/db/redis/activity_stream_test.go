package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/videotube/account-service/internal/core/domain"
)

func TestActivityStream_Args(t *testing.T) {
	s := NewActivityStream(nil, "")
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	args := s.args(domain.ActivityEvent{Type: domain.ActivityLoggedIn, UserID: "u1", At: at})

	assert.Equal(t, DefaultActivityStream, args.Stream)
	assert.Equal(t, int64(activityMaxLen), args.MaxLen)
	assert.True(t, args.Approx)
	assert.Equal(t, map[string]interface{}{
		"type":    "logged_in",
		"user_id": "u1",
		"at":      at.UnixMilli(),
	}, args.Values)
}

func TestActivityStream_ArgsDefaultsTimestamp(t *testing.T) {
	s := NewActivityStream(nil, "custom")
	before := time.Now().UnixMilli()

	args := s.args(domain.ActivityEvent{Type: domain.ActivityLoggedOut, UserID: "u1"})

	assert.Equal(t, "custom", args.Stream)
	values := args.Values.(map[string]interface{})
	assert.GreaterOrEqual(t, values["at"].(int64), before)
}
