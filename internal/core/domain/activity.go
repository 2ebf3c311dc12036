package domain

import "time"

// ActivityType names an account event published to the activity stream.
type ActivityType string

const (
	ActivityRegistered      ActivityType = "registered"
	ActivityLoggedIn        ActivityType = "logged_in"
	ActivityLoggedOut       ActivityType = "logged_out"
	ActivityTokenRefreshed  ActivityType = "token_refreshed"
	ActivityPasswordChanged ActivityType = "password_changed"
	ActivityProfileUpdated  ActivityType = "profile_updated"
	ActivityAvatarReplaced  ActivityType = "avatar_replaced"
	ActivityCoverReplaced   ActivityType = "cover_replaced"
)

// ActivityEvent records that something happened to an account.
type ActivityEvent struct {
	Type   ActivityType
	UserID string
	At     time.Time
}
