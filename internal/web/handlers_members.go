package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/evereld/staffdesk/internal/platform/id"
	"github.com/evereld/staffdesk/internal/storage"
)

type memberListView struct {
	Flash   string
	Members []storage.Member
}

type memberFormView struct {
	Error     string
	Action    string
	Member    storage.Member
	BirthDate string
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	members, err := s.members.ListMembers(r.Context())
	if err != nil {
		s.internalError(w, "list members", err)
		return
	}
	s.renderPage(w, "members.html", memberListView{Flash: popFlash(w, r), Members: members})
}

func (s *Server) handleMemberAdd(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, "member_form.html", memberFormView{Action: "/admin/members/add"})
	case http.MethodPost:
		s.handleMemberAddSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMemberAddSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	firstName := strings.TrimSpace(r.PostFormValue("first_name"))
	lastName := strings.TrimSpace(r.PostFormValue("last_name"))
	if firstName == "" || lastName == "" {
		s.renderPage(w, "member_form.html", memberFormView{
			Error:  "First and last name are required.",
			Action: "/admin/members/add",
		})
		return
	}

	birthDate, err := parseDate(r.PostFormValue("birth_date"))
	if err != nil {
		s.renderPage(w, "member_form.html", memberFormView{
			Error:  "Birth date must be a valid date.",
			Action: "/admin/members/add",
		})
		return
	}

	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save member image", err)
		return
	}

	memberID, err := id.NewID()
	if err != nil {
		s.internalError(w, "generate member id", err)
		return
	}

	member := storage.Member{
		ID:        memberID,
		Image:     image,
		FirstName: firstName,
		LastName:  lastName,
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Phone:     strings.TrimSpace(r.PostFormValue("phone")),
		JobTitle:  strings.TrimSpace(r.PostFormValue("job_title")),
		Address:   strings.TrimSpace(r.PostFormValue("address")),
		BirthDate: birthDate,
		CreatedAt: s.now().UTC(),
	}
	if err := s.members.PutMember(r.Context(), member); err != nil {
		s.internalError(w, "put member", err)
		return
	}

	setFlash(w, "Member added.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}

func (s *Server) handleMemberEdit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleMemberEditForm(w, r)
	case http.MethodPost:
		s.handleMemberEditSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMemberEditForm(w http.ResponseWriter, r *http.Request) {
	member, err := s.members.GetMember(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "member not found")
			return
		}
		s.internalError(w, "get member", err)
		return
	}

	view := memberFormView{Action: "/admin/members/edit", Member: member}
	if !member.BirthDate.IsZero() {
		view.BirthDate = member.BirthDate.Format("2006-01-02")
	}
	s.renderPage(w, "member_form.html", view)
}

func (s *Server) handleMemberEditSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	existing, err := s.members.GetMember(r.Context(), r.PostFormValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "member not found")
			return
		}
		s.internalError(w, "get member", err)
		return
	}

	if v := strings.TrimSpace(r.PostFormValue("first_name")); v != "" {
		existing.FirstName = v
	}
	if v := strings.TrimSpace(r.PostFormValue("last_name")); v != "" {
		existing.LastName = v
	}
	existing.Email = strings.TrimSpace(r.PostFormValue("email"))
	existing.Phone = strings.TrimSpace(r.PostFormValue("phone"))
	existing.JobTitle = strings.TrimSpace(r.PostFormValue("job_title"))
	existing.Address = strings.TrimSpace(r.PostFormValue("address"))

	if v := r.PostFormValue("birth_date"); strings.TrimSpace(v) != "" {
		birthDate, err := parseDate(v)
		if err != nil {
			s.renderError(w, http.StatusBadRequest, "birth date must be a valid date")
			return
		}
		existing.BirthDate = birthDate
	}

	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save member image", err)
		return
	}
	if image != "" {
		existing.Image = image
	}

	if err := s.members.UpdateMember(r.Context(), existing); err != nil {
		s.internalError(w, "update member", err)
		return
	}

	setFlash(w, "Member updated.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}

func (s *Server) handleMemberDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	memberID := strings.TrimPrefix(r.URL.Path, "/admin/members/delete/")
	if err := s.members.DeleteMember(r.Context(), memberID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.internalError(w, "delete member", err)
		return
	}

	setFlash(w, "Member deleted.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}
