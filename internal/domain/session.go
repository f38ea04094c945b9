package domain

import "time"

// Session represents an active user session with refresh token.
// Each device gets its own session - you can see what's connected.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	ClientName       string    `json:"client_name,omitempty"` // e.g. CampusWall Web
	DeviceName       string    `json:"device_name,omitempty"` // Optional, user-set
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName returns a human-readable description of the device.
func (s *Session) DisplayName() string {
	if s.DeviceName != "" {
		return s.DeviceName
	}
	if s.ClientName != "" {
		return s.ClientName
	}
	return "Unknown Device"
}
