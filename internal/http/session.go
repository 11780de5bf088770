package http

import (
	"net/http"

	"gastos/internal/log"
	"gastos/internal/session"
)

const sessionCookie = "gastos_session"

// currentSession returns the live store for the request cookie, if any.
func (s *Server) currentSession(r *http.Request) (*session.Store, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// ensureSession returns the request's store, starting a new session and
// setting its cookie when the cookie is missing or has expired.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) *session.Store {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	store, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    store.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		log.FromContext(r.Context()).DebugContext(r.Context(), "Session started", log.FieldSessionID, store.ID())
	}
	return store
}
