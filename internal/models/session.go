package models

import "time"

// SessionContext carries the authenticated user's identity and backend-issued
// bearer token through a request. It is built once by the auth middleware and
// passed explicitly into services; nothing reads auth state from globals.
type SessionContext struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// IsAuthenticated reports whether the context carries a usable identity.
func (s *SessionContext) IsAuthenticated() bool {
	return s != nil && s.UserID != "" && s.Token != ""
}

// IsExpired reports whether the token's recorded expiry has passed. A zero
// expiry means the token carried no exp claim and is treated as unexpired;
// the backend still gets the final say via a 401.
func (s *SessionContext) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
