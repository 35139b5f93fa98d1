package web

import (
	"net/http"
	"time"

	"github.com/evereld/staffdesk/internal/auth/session"
)

const ticketCookieName = "staffdesk_ticket"
const sessionCookieName = "staffdesk_session"

// setTicketCookie writes the signed ticket to the browser. Persistent
// tickets carry a MaxAge so they survive browser restarts; short tickets
// are scoped to the browser session.
func setTicketCookie(w http.ResponseWriter, ticket session.Ticket, now time.Time) {
	cookie := &http.Cookie{
		Name:     ticketCookieName,
		Value:    ticket.Value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ticket.Persistent {
		cookie.MaxAge = int(ticket.ExpiresAt.Sub(now).Seconds())
	}
	http.SetCookie(w, cookie)
}

// clearTicketCookie expires the ticket cookie.
func clearTicketCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ticketCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setSessionCookie writes the session id cookie to the response.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
