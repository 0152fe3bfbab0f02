package model

import "time"

// Credential stores one OAuth grant per (user, platform). Tokens never
// transit through the client; they are read and written server-side only.
type Credential struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     Platform   `json:"platform"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes,omitempty"`
	ExternalID   string     `json:"external_id,omitempty"` // channel / open_id / ig business id
	AccountName  string     `json:"account_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ExpiresWithin reports whether the access token expires inside the window.
// A credential without an expiry never reports stale.
func (c *Credential) ExpiresWithin(window time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now.Add(window))
}

// Refreshable reports whether unattended refresh is possible: the platform
// must support refresh tokens and one must be stored.
func (c *Credential) Refreshable() bool {
	cap, ok := PlatformCapabilities[c.Platform]
	return ok && cap.SupportsRefresh && c.RefreshToken != ""
}
