// Package web serves the staffdesk HTTP surface: the public auth pages and
// the ticket-gated admin CRUD screens.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/evereld/staffdesk/internal/auth/account"
	"github.com/evereld/staffdesk/internal/auth/oauth"
	"github.com/evereld/staffdesk/internal/auth/session"
	"github.com/evereld/staffdesk/internal/auth/ticket"
	"github.com/evereld/staffdesk/internal/storage"
)

// Server wires the auth services and stores into HTTP handlers.
type Server struct {
	accounts *account.Service
	issuer   *session.Issuer
	signer   *ticket.Signer
	bridge   *oauth.Bridge

	clients  storage.ClientStore
	members  storage.MemberStore
	statuses storage.StatusStore
	projects storage.ProjectStore

	uploadDir string
	now       func() time.Time
}

// Config collects the server's collaborators.
type Config struct {
	Accounts *account.Service
	Issuer   *session.Issuer
	Signer   *ticket.Signer
	Bridge   *oauth.Bridge

	Clients  storage.ClientStore
	Members  storage.MemberStore
	Statuses storage.StatusStore
	Projects storage.ProjectStore

	// UploadDir is where entity images are written. Empty disables uploads.
	UploadDir string
	Now       func() time.Time
}

// NewServer creates the web server from its collaborators.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Accounts == nil {
		return nil, errors.New("account service is required")
	}
	if cfg.Issuer == nil {
		return nil, errors.New("session issuer is required")
	}
	if cfg.Signer == nil {
		return nil, errors.New("ticket signer is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		accounts:  cfg.Accounts,
		issuer:    cfg.Issuer,
		signer:    cfg.Signer,
		bridge:    cfg.Bridge,
		clients:   cfg.Clients,
		members:   cfg.Members,
		statuses:  cfg.Statuses,
		projects:  cfg.Projects,
		uploadDir: cfg.UploadDir,
		now:       now,
	}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/signup", s.handleSignup)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/logout", s.handleLogout)
	mux.HandleFunc("/auth/google", s.handleGoogleLogin)
	mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)

	mux.Handle("/admin/projects", s.requireAuth(s.handleProjects))
	mux.Handle("/admin/projects/add", s.requireAuth(s.handleProjectAdd))
	mux.Handle("/admin/projects/get/", s.requireAuth(s.handleProjectGet))
	mux.Handle("/admin/projects/edit", s.requireAuth(s.handleProjectEdit))
	mux.Handle("/admin/projects/delete/", s.requireAuth(s.handleProjectDelete))

	mux.Handle("/admin/members", s.requireAuth(s.handleMembers))
	mux.Handle("/admin/members/add", s.requireAuth(s.handleMemberAdd))
	mux.Handle("/admin/members/edit", s.requireAuth(s.handleMemberEdit))
	mux.Handle("/admin/members/delete/", s.requireAuth(s.handleMemberDelete))

	mux.Handle("/admin/clients", s.requireAuth(s.handleClients))
	mux.Handle("/admin/clients/add", s.requireAuth(s.handleClientAdd))
	mux.Handle("/admin/clients/edit", s.requireAuth(s.handleClientEdit))
	mux.Handle("/admin/clients/delete/", s.requireAuth(s.handleClientDelete))

	if s.uploadDir != "" {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))
	}

	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// handleRoot sends anonymous visitors to login and everyone else to the
// project list.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, err := s.identityFromRequest(r); err != nil {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/admin/projects", http.StatusFound)
}

// StartCleanup periodically removes expired sessions and pending federation
// flows until the context is canceled.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	if s == nil || interval <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.issuer.Sweep(ctx); err != nil {
					log.Printf("web: sweep sessions: %v", err)
				}
				if s.bridge != nil {
					if err := s.bridge.Sweep(ctx); err != nil {
						log.Printf("web: sweep provider states: %v", err)
					}
				}
			}
		}
	}()
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "error.html", errorView{Message: message}); err != nil {
		log.Printf("web: render error page: %v", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("web: %s: %v", op, err)
	s.renderError(w, http.StatusInternalServerError, "something went wrong")
}

type errorView struct {
	Message string
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, fmt.Sprintf("%d method not allowed", http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
