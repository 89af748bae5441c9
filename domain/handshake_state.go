package domain

import "time"

// HandshakeState is a single-use CSRF token issued when an OAuth handshake is
// initiated. It binds the browser round trip to the user that started it.
type HandshakeState struct {
	ID        string    `bson:"_id" json:"id"`
	State     string    `bson:"state" json:"state"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Provider  Provider  `bson:"provider" json:"provider"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the state is no longer usable at now.
func (s *HandshakeState) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
