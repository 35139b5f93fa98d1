package web

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/platform/id"
	"github.com/evereld/staffdesk/internal/storage"
)

type clientListView struct {
	Flash   string
	Clients []storage.Client
}

type clientFormView struct {
	Error  string
	Action string
	Client storage.Client
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	clients, err := s.clients.ListClients(r.Context())
	if err != nil {
		s.internalError(w, "list clients", err)
		return
	}
	s.renderPage(w, "clients.html", clientListView{Flash: popFlash(w, r), Clients: clients})
}

func (s *Server) handleClientAdd(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, "client_form.html", clientFormView{Action: "/admin/clients/add"})
	case http.MethodPost:
		s.handleClientAddSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClientAddSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		s.renderPage(w, "client_form.html", clientFormView{
			Error:  "Client name is required.",
			Action: "/admin/clients/add",
		})
		return
	}

	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save client image", err)
		return
	}

	clientID, err := id.NewID()
	if err != nil {
		s.internalError(w, "generate client id", err)
		return
	}

	client := storage.Client{
		ID:        clientID,
		Image:     image,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.clients.PutClient(r.Context(), client); err != nil {
		s.internalError(w, "put client", err)
		return
	}

	setFlash(w, "Client added.")
	http.Redirect(w, r, "/admin/clients", http.StatusSeeOther)
}

func (s *Server) handleClientEdit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleClientEditForm(w, r)
	case http.MethodPost:
		s.handleClientEditSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClientEditForm(w http.ResponseWriter, r *http.Request) {
	client, err := s.clients.GetClient(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "client not found")
			return
		}
		s.internalError(w, "get client", err)
		return
	}
	s.renderPage(w, "client_form.html", clientFormView{Action: "/admin/clients/edit", Client: client})
}

func (s *Server) handleClientEditSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	existing, err := s.clients.GetClient(r.Context(), r.PostFormValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "client not found")
			return
		}
		s.internalError(w, "get client", err)
		return
	}

	if name := strings.TrimSpace(r.PostFormValue("name")); name != "" {
		existing.Name = name
	}
	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save client image", err)
		return
	}
	if image != "" {
		existing.Image = image
	}

	if err := s.clients.UpdateClient(r.Context(), existing); err != nil {
		s.internalError(w, "update client", err)
		return
	}

	setFlash(w, "Client updated.")
	http.Redirect(w, r, "/admin/clients", http.StatusSeeOther)
}

func (s *Server) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	clientID := strings.TrimPrefix(r.URL.Path, "/admin/clients/delete/")
	if err := s.clients.DeleteClient(r.Context(), clientID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.internalError(w, "delete client", err)
		return
	}

	setFlash(w, "Client deleted.")
	http.Redirect(w, r, "/admin/clients", http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, view any) {
	if err := templates.ExecuteTemplate(w, name, view); err != nil {
		log.Printf("web: render %s: %v", name, err)
	}
}

// parseDate reads a form date in ISO layout; empty values return the zero
// time.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
