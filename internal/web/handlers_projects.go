package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/evereld/staffdesk/internal/platform/id"
	"github.com/evereld/staffdesk/internal/platform/requestctx"
	"github.com/evereld/staffdesk/internal/storage"
)

type projectRow struct {
	ID         string
	Name       string
	ClientName string
	MemberName string
	StatusName string
	Budget     float64
}

type projectListView struct {
	Flash       string
	DisplayName string
	Projects    []projectRow
}

type projectFormView struct {
	Error     string
	Action    string
	Project   storage.Project
	Clients   []storage.Client
	Members   []storage.Member
	Statuses  []storage.Status
	StartDate string
	EndDate   string
	Budget    string
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	ctx := r.Context()

	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		s.internalError(w, "list projects", err)
		return
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		s.internalError(w, "list clients", err)
		return
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		s.internalError(w, "list members", err)
		return
	}
	statuses, err := s.statuses.ListStatuses(ctx)
	if err != nil {
		s.internalError(w, "list statuses", err)
		return
	}

	clientNames := make(map[string]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = strings.TrimSpace(m.FirstName + " " + m.LastName)
	}
	statusNames := make(map[string]string, len(statuses))
	for _, st := range statuses {
		statusNames[st.ID] = st.Name
	}

	view := projectListView{Flash: popFlash(w, r)}
	if identity, ok := requestctx.IdentityFromContext(ctx); ok {
		view.DisplayName = identity.DisplayName
	}
	for _, p := range projects {
		view.Projects = append(view.Projects, projectRow{
			ID:         p.ID,
			Name:       p.Name,
			ClientName: clientNames[p.ClientID],
			MemberName: memberNames[p.MemberID],
			StatusName: statusNames[p.StatusID],
			Budget:     p.Budget,
		})
	}
	s.renderPage(w, "projects.html", view)
}

func (s *Server) handleProjectAdd(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderProjectForm(w, r, projectFormView{Action: "/admin/projects/add"})
	case http.MethodPost:
		s.handleProjectAddSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) renderProjectForm(w http.ResponseWriter, r *http.Request, view projectFormView) {
	ctx := r.Context()
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		s.internalError(w, "list clients", err)
		return
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		s.internalError(w, "list members", err)
		return
	}
	statuses, err := s.statuses.ListStatuses(ctx)
	if err != nil {
		s.internalError(w, "list statuses", err)
		return
	}
	view.Clients = clients
	view.Members = members
	view.Statuses = statuses
	if !view.Project.StartDate.IsZero() {
		view.StartDate = view.Project.StartDate.Format("2006-01-02")
	}
	if !view.Project.EndDate.IsZero() {
		view.EndDate = view.Project.EndDate.Format("2006-01-02")
	}
	if view.Project.Budget != 0 {
		view.Budget = strconv.FormatFloat(view.Project.Budget, 'f', 2, 64)
	}
	s.renderPage(w, "project_form.html", view)
}

func (s *Server) handleProjectAddSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		s.renderProjectForm(w, r, projectFormView{
			Error:  "Project name is required.",
			Action: "/admin/projects/add",
		})
		return
	}

	startDate, err := parseDate(r.PostFormValue("start_date"))
	if err != nil {
		s.renderProjectForm(w, r, projectFormView{Error: "Start date must be a valid date.", Action: "/admin/projects/add"})
		return
	}
	endDate, err := parseDate(r.PostFormValue("end_date"))
	if err != nil {
		s.renderProjectForm(w, r, projectFormView{Error: "End date must be a valid date.", Action: "/admin/projects/add"})
		return
	}
	budget, err := parseBudget(r.PostFormValue("budget"))
	if err != nil {
		s.renderProjectForm(w, r, projectFormView{Error: "Budget must be a number.", Action: "/admin/projects/add"})
		return
	}

	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save project image", err)
		return
	}

	projectID, err := id.NewID()
	if err != nil {
		s.internalError(w, "generate project id", err)
		return
	}

	project := storage.Project{
		ID:          projectID,
		Image:       image,
		Name:        name,
		ClientID:    r.PostFormValue("client_id"),
		MemberID:    r.PostFormValue("member_id"),
		Description: r.PostFormValue("description"),
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      budget,
		StatusID:    r.PostFormValue("status_id"),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.projects.PutProject(r.Context(), project); err != nil {
		s.internalError(w, "put project", err)
		return
	}

	setFlash(w, "Project added.")
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}

// handleProjectGet returns a single project as JSON for the edit dialog.
func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	projectID := strings.TrimPrefix(r.URL.Path, "/admin/projects/get/")
	project, err := s.projects.GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		s.internalError(w, "get project", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{
		"id":          project.ID,
		"image":       project.Image,
		"name":        project.Name,
		"clientId":    project.ClientID,
		"memberId":    project.MemberID,
		"description": project.Description,
		"budget":      project.Budget,
		"statusId":    project.StatusID,
	}
	if !project.StartDate.IsZero() {
		payload["startDate"] = project.StartDate.Format("2006-01-02")
	}
	if !project.EndDate.IsZero() {
		payload["endDate"] = project.EndDate.Format("2006-01-02")
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.internalError(w, "encode project", err)
	}
}

// handleProjectEdit applies a patch-style update: fields left empty in the
// form keep their stored values.
func (s *Server) handleProjectEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "malformed form submission")
		return
	}

	existing, err := s.projects.GetProject(r.Context(), r.PostFormValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "project not found")
			return
		}
		s.internalError(w, "get project", err)
		return
	}

	if v := strings.TrimSpace(r.PostFormValue("name")); v != "" {
		existing.Name = v
	}
	if v := r.PostFormValue("client_id"); v != "" {
		existing.ClientID = v
	}
	if v := r.PostFormValue("member_id"); v != "" {
		existing.MemberID = v
	}
	if v := r.PostFormValue("status_id"); v != "" {
		existing.StatusID = v
	}
	if v := r.PostFormValue("description"); strings.TrimSpace(v) != "" {
		existing.Description = v
	}
	if v := r.PostFormValue("start_date"); strings.TrimSpace(v) != "" {
		startDate, err := parseDate(v)
		if err != nil {
			s.renderError(w, http.StatusBadRequest, "start date must be a valid date")
			return
		}
		existing.StartDate = startDate
	}
	if v := r.PostFormValue("end_date"); strings.TrimSpace(v) != "" {
		endDate, err := parseDate(v)
		if err != nil {
			s.renderError(w, http.StatusBadRequest, "end date must be a valid date")
			return
		}
		existing.EndDate = endDate
	}
	if v := r.PostFormValue("budget"); strings.TrimSpace(v) != "" {
		budget, err := parseBudget(v)
		if err != nil {
			s.renderError(w, http.StatusBadRequest, "budget must be a number")
			return
		}
		existing.Budget = budget
	}

	image, err := s.saveUpload(r, "image")
	if err != nil {
		s.internalError(w, "save project image", err)
		return
	}
	if image != "" {
		existing.Image = image
	}

	if err := s.projects.UpdateProject(r.Context(), existing); err != nil {
		s.internalError(w, "update project", err)
		return
	}

	setFlash(w, "Project updated.")
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	projectID := strings.TrimPrefix(r.URL.Path, "/admin/projects/delete/")
	if err := s.projects.DeleteProject(r.Context(), projectID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.internalError(w, "delete project", err)
		return
	}

	setFlash(w, "Project deleted.")
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}

func parseBudget(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}
