package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionHandler attaches and detaches the backend-issued access token to the
// cookie session. The gateway performs no authentication itself; the frontend
// obtains the token from the backend's login endpoint and hands it over here.
type SessionHandler struct {
	store sessions.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store sessions.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

type createSessionRequest struct {
	AccessToken string `json:"accessToken"`
}

// CreateSession stores the backend-issued token in the cookie session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		http.Error(w, "Access token is required", http.StatusBadRequest)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		session, _ = h.store.New(r, "session")
	}

	session.Values["access_token"] = req.AccessToken
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DestroySession drops the token (logout). The pending intent slot is left
// alone; it is keyed separately and cleared by the flow's own terminal
// branches.
func (h *SessionHandler) DestroySession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	delete(session.Values, "access_token")
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
