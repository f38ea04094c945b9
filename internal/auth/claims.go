package auth

import "time"

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// DeviceInfo represents information sent by the client about itself.
// Stored on the Session for display in the active-sessions list.
type DeviceInfo struct {
	ClientName string `json:"client_name"` // e.g. CampusWall Web
	DeviceName string `json:"device_name"` // Optional, user-set
}
