package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/evereld/staffdesk/internal/auth/account"
	"github.com/evereld/staffdesk/internal/auth/user"
)

type loginView struct {
	Flash string
	Error string
	Email string
}

type signupView struct {
	Error     string
	FirstName string
	LastName  string
	Email     string
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderSignup(w, http.StatusOK, signupView{})
	case http.MethodPost:
		s.handleSignupSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	firstName := r.PostFormValue("first_name")
	lastName := r.PostFormValue("last_name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	err := s.accounts.SignUp(r.Context(), firstName, lastName, email, password)
	if err != nil {
		view := signupView{FirstName: firstName, LastName: lastName, Email: email}
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			view.Error = "That email address is already registered."
			s.renderSignup(w, http.StatusConflict, view)
		case isValidationError(err):
			view.Error = err.Error()
			s.renderSignup(w, http.StatusBadRequest, view)
		default:
			s.internalError(w, "sign up", err)
		}
		return
	}

	// Signup never logs the user in; the new account must authenticate.
	setFlash(w, "Account created. Please log in.")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderLogin(w, r, http.StatusOK, loginView{Flash: popFlash(w, r)})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	rememberMe := r.PostFormValue("remember_me") != ""

	identity, err := s.accounts.LogIn(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			s.renderLogin(w, r, http.StatusUnauthorized, loginView{
				Error: "Invalid email or password.",
				Email: email,
			})
			return
		}
		s.internalError(w, "log in", err)
		return
	}

	s.establishSession(w, r, identity, rememberMe)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.issuer.Revoke(r.Context(), cookie.Value); err != nil {
			log.Printf("web: revoke session: %v", err)
		}
	}
	clearTicketCookie(w)
	clearSessionCookie(w)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.bridge == nil {
		s.renderError(w, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	authorizeURL, err := s.bridge.Begin(r.Context())
	if err != nil {
		s.internalError(w, "begin federation", err)
		return
	}
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.bridge == nil {
		s.renderError(w, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	query := r.URL.Query()
	profile, err := s.bridge.Complete(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		log.Printf("web: complete federation: %v", err)
		setFlash(w, "Google sign-in failed. Please try again.")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	identity, err := s.accounts.Federate(r.Context(), profile)
	if err != nil {
		if errors.Is(err, account.ErrMissingEmail) {
			setFlash(w, "Google did not share an email address for your account.")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		s.internalError(w, "federate", err)
		return
	}

	// Federated logins are always persistent.
	s.establishSession(w, r, identity, true)
}

// establishSession issues the ticket and session record, sets both cookies,
// and lands the browser on the project list.
func (s *Server) establishSession(w http.ResponseWriter, r *http.Request, identity user.Identity, rememberMe bool) {
	tick, record, err := s.issuer.Issue(r.Context(), identity, rememberMe)
	if err != nil {
		s.internalError(w, "issue session", err)
		return
	}
	setTicketCookie(w, tick, s.now().UTC())
	setSessionCookie(w, record.ID)
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, view loginView) {
	if view.Flash == "" {
		view.Flash = popFlash(w, r)
	}
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "login.html", view); err != nil {
		log.Printf("web: render login page: %v", err)
	}
}

func (s *Server) renderSignup(w http.ResponseWriter, status int, view signupView) {
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "signup.html", view); err != nil {
		log.Printf("web: render signup page: %v", err)
	}
}
