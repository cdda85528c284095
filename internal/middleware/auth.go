package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"eventure-gateway/internal/models"
	"eventure-gateway/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// SessionContextKey holds the request's *models.SessionContext.
	SessionContextKey contextKey = "session_context"
	// SessionKeyContextKey holds the stable per-session intent-slot key.
	SessionKeyContextKey contextKey = "session_key"

	sessionName = "session"
)

// AuthMiddleware builds the explicit session context for each request from
// the backend-issued bearer token held in the cookie session. The gateway
// never verifies the token's signature; the backend does that on every call.
type AuthMiddleware struct {
	store sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// LoadSession loads the cookie session, ensures it has a stable session key
// for the intent slot, and attaches a SessionContext when a token is present.
func (m *AuthMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, sessionName)
		if err != nil {
			// Corrupt cookie; start over with a fresh session.
			session, _ = m.store.New(r, sessionName)
		}

		sessionKey, ok := session.Values["session_key"].(string)
		if !ok || sessionKey == "" {
			sessionKey, err = utils.GenerateToken(32)
			if err != nil {
				log.Printf("Failed to generate session key: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			session.Values["session_key"] = sessionKey
			if err := session.Save(r, w); err != nil {
				log.Printf("Failed to save session: %v", err)
			}
		}

		ctx := context.WithValue(r.Context(), SessionKeyContextKey, sessionKey)

		if token, ok := session.Values["access_token"].(string); ok && token != "" {
			sc := buildSessionContext(token)
			if sc.IsAuthenticated() {
				ctx = context.WithValue(ctx, SessionContextKey, sc)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth ensures the request carries an unexpired session context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := GetSessionContext(r.Context())
		if sc == nil {
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}

		if sc.IsExpired(time.Now()) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// buildSessionContext extracts identity claims from the backend's JWT. The
// claims are read without signature verification, for display and request
// routing only; authorization stays with the backend.
func buildSessionContext(token string) *models.SessionContext {
	sc := &models.SessionContext{Token: token}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		log.Printf("Failed to parse access token claims: %v", err)
		return sc
	}

	if sub, err := claims.GetSubject(); err == nil {
		sc.UserID = sub
	}
	if userID, ok := claims["userId"].(string); ok && userID != "" {
		sc.UserID = userID
	}
	if email, ok := claims["email"].(string); ok {
		sc.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sc.ExpiresAt = exp.Time
	}

	return sc
}

// GetSessionContext retrieves the session context from request context
func GetSessionContext(ctx context.Context) *models.SessionContext {
	if sc, ok := ctx.Value(SessionContextKey).(*models.SessionContext); ok {
		return sc
	}
	return nil
}

// GetSessionKey retrieves the intent-slot session key from request context
func GetSessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(SessionKeyContextKey).(string); ok {
		return key
	}
	return ""
}
