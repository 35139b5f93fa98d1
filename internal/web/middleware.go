package web

import (
	"errors"
	"net/http"

	"github.com/evereld/staffdesk/internal/auth/ticket"
	"github.com/evereld/staffdesk/internal/platform/requestctx"
	"github.com/evereld/staffdesk/internal/storage"
)

// identityFromRequest validates the ticket cookie and returns its claims.
// The ticket alone is the authentication authority; the session record is
// touched separately so its idle expiry slides with activity.
func (s *Server) identityFromRequest(r *http.Request) (ticket.Claims, error) {
	cookie, err := r.Cookie(ticketCookieName)
	if err != nil {
		return ticket.Claims{}, ticket.ErrInvalidTicket
	}
	return s.signer.Parse(cookie.Value)
}

// requireAuth gates a handler behind a valid ticket. Anonymous or expired
// visitors land on the login page; authenticated requests carry the identity
// in context and slide their session's idle expiry.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.identityFromRequest(r)
		if err != nil {
			clearTicketCookie(w)
			clearSessionCookie(w)
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}

		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			// A lapsed session does not invalidate the ticket; the record is
			// simply gone until the next login recreates it.
			if _, err := s.issuer.Resolve(r.Context(), cookie.Value); err != nil && !errors.Is(err, storage.ErrNotFound) {
				s.internalError(w, "resolve session", err)
				return
			}
		}

		ctx := requestctx.WithIdentity(r.Context(), requestctx.Identity{
			UserID:      claims.UserID,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		})
		next(w, r.WithContext(ctx))
	})
}
