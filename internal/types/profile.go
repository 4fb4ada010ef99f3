package types

// UserStatus is the presence state a profile or peer can report.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
	StatusOffline UserStatus = "offline"
)

// UserProfile describes the local node's (or a remote peer's) identity.
// Mutable in-place only by its owning node; received copies are treated
// as immutable snapshots by the rest of the system.
type UserProfile struct {
	UserID        UserId     `json:"user_id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	Status        UserStatus `json:"status"`
	StatusMessage *string    `json:"status_message,omitempty"`
	AvatarHash    *string    `json:"avatar_hash,omitempty"`
}

// NewUserProfile creates a fresh profile with a new UserId and Online
// status, the way the original Rust UserProfile::new does.
func NewUserProfile(username, displayName string) UserProfile {
	return UserProfile{
		UserID:      NewID(),
		Username:    username,
		DisplayName: displayName,
		Status:      StatusOnline,
	}
}
