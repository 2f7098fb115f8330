// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/observability"
	"github.com/solhub/solhub/pkg/errutil"
)

type projectsView struct {
	Projects []catalog.Project
	Sectors  []catalog.Sector
	Sector   string
}

type projectView struct {
	Project    *catalog.Project
	SectorName string
}

type projectFormView struct {
	Project catalog.Project
	Sectors []catalog.Sector
	Error   string
}

type loginView struct {
	ErrorMessage string
	UserName     string
}

type registerView struct {
	ErrorMessage   string
	SuccessMessage string
	UserName       string
	Email          string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", nil)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderNotFound(w, r, "Nothing Found!")
}

// handleProjects lists projects. ?sector= takes a sector id, or part of a
// sector name.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sector := strings.TrimSpace(r.URL.Query().Get("sector"))

	var (
		projects []catalog.Project
		err      error
	)
	switch id, convErr := strconv.Atoi(sector); {
	case sector == "":
		projects, err = s.catalog.ListProjects(ctx)
	case convErr == nil:
		projects, err = s.catalog.ListProjectsBySectorID(ctx, id)
	default:
		projects, err = s.catalog.ListProjectsBySector(ctx, sector)
	}
	if errors.Is(err, catalog.ErrNoProjects) {
		s.renderNotFound(w, r, catalogMessage(err))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	sectors, err := s.catalog.ListSectors(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "projects", projectsView{
		Projects: projects,
		Sectors:  sectors,
		Sector:   sector,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderNotFound(w, r, catalog.ErrProjectNotFound.Error())
		return
	}

	project, err := s.catalog.GetProject(r.Context(), id)
	if errors.Is(err, catalog.ErrProjectNotFound) {
		s.renderNotFound(w, r, catalogMessage(err))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	sectorName := "Unknown"
	if project.Sector != nil {
		sectorName = project.Sector.Name
	}
	s.render(w, r, http.StatusOK, "project", projectView{Project: project, SectorName: sectorName})
}

func (s *Server) handleAddProjectForm(w http.ResponseWriter, r *http.Request) {
	s.renderProjectForm(w, r, http.StatusOK, "addProject", catalog.Project{}, "")
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	p := projectFromForm(r)

	if _, err := s.catalog.AddProject(r.Context(), p); err != nil {
		if isFormError(err) {
			s.renderProjectForm(w, r, http.StatusUnprocessableEntity, "addProject", p, catalogMessage(err))
			return
		}
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/solutions/projects", http.StatusSeeOther)
}

func (s *Server) handleEditProjectForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderNotFound(w, r, catalog.ErrProjectNotFound.Error())
		return
	}

	project, err := s.catalog.GetProject(r.Context(), id)
	if errors.Is(err, catalog.ErrProjectNotFound) {
		s.renderNotFound(w, r, catalogMessage(err))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderProjectForm(w, r, http.StatusOK, "editProject", *project, "")
}

func (s *Server) handleEditProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("id"))
	if err != nil {
		s.renderNotFound(w, r, catalog.ErrProjectNotFound.Error())
		return
	}
	p := projectFromForm(r)
	p.ID = id

	if err := s.catalog.EditProject(r.Context(), id, p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProjectNotFound):
			s.renderNotFound(w, r, catalogMessage(err))
		case isFormError(err):
			s.renderProjectForm(w, r, http.StatusUnprocessableEntity, "editProject", p, catalogMessage(err))
		default:
			s.renderError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/solutions/projects", http.StatusSeeOther)
}

// handleDeleteProject is a GET link; it carries the CSRF token in the
// query string.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if !validCSRF(r, csrfToken(r.Context())) {
		s.renderForbidden(w, r)
		return
	}

	id, ok := pathID(r)
	if !ok {
		s.renderNotFound(w, r, catalog.ErrProjectNotFound.Error())
		return
	}

	if err := s.catalog.DeleteProject(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProjectNotFound) {
			s.renderNotFound(w, r, catalogMessage(err))
			return
		}
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/solutions/projects", http.StatusFound)
}

func (s *Server) renderProjectForm(w http.ResponseWriter, r *http.Request, status int, name string, p catalog.Project, message string) {
	sectors, err := s.catalog.ListSectors(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, status, name, projectFormView{Project: p, Sectors: sectors, Error: message})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", loginView{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	userName := r.PostFormValue("userName")

	user, err := s.auth.Authenticate(r.Context(), userName, r.PostFormValue("password"), r.UserAgent())
	if err != nil {
		message, status, result := loginOutcome(err, userName)
		s.metrics.RecordAuthAttempt(observability.FlowLogin, result)
		if status >= http.StatusInternalServerError {
			errutil.LogErrorContext(r.Context(), s.logger, "login failed", err, "user", userName)
		}
		s.render(w, r, status, "login", loginView{ErrorMessage: message, UserName: userName})
		return
	}

	if err := s.sessions.login(w, r, user); err != nil {
		s.metrics.RecordAuthAttempt(observability.FlowLogin, observability.ResultError)
		errutil.LogErrorContext(r.Context(), s.logger, "failed to start session", err, "user", userName)
		s.render(w, r, http.StatusInternalServerError, "login", loginView{
			ErrorMessage: "There was an error verifying the user",
			UserName:     userName,
		})
		return
	}

	s.metrics.RecordAuthAttempt(observability.FlowLogin, observability.ResultSuccess)
	s.logger.InfoContext(r.Context(), "user logged in", "user", user.Identifier)
	http.Redirect(w, r, "/solutions/projects", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", registerView{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	userName := r.PostFormValue("userName")
	email := strings.TrimSpace(r.PostFormValue("email"))

	req := auth.RegisterRequest{
		Identifier:           userName,
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password2"),
	}
	if email != "" {
		req.Profile = map[string]string{"email": email}
	}

	if req.Password == "" {
		s.metrics.RecordAuthAttempt(observability.FlowRegister, observability.ResultFailure)
		s.render(w, r, http.StatusBadRequest, "register", registerView{
			ErrorMessage: msgPasswordRequired,
			UserName:     userName,
			Email:        email,
		})
		return
	}

	if err := s.auth.Register(r.Context(), req); err != nil {
		message, status := registerOutcome(err)
		s.metrics.RecordAuthAttempt(observability.FlowRegister, registerResult(status))
		if status >= http.StatusInternalServerError {
			errutil.LogErrorContext(r.Context(), s.logger, "registration failed", err, "user", userName)
		}
		s.render(w, r, status, "register", registerView{
			ErrorMessage: message,
			UserName:     userName,
			Email:        email,
		})
		return
	}

	s.metrics.RecordAuthAttempt(observability.FlowRegister, observability.ResultSuccess)
	s.logger.InfoContext(r.Context(), "user registered", "user", userName)
	s.render(w, r, http.StatusOK, "register", registerView{SuccessMessage: "User created"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.logout(w, r); err != nil {
		errutil.LogErrorContext(r.Context(), s.logger, "failed to clear session", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "userHistory", nil)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func projectFromForm(r *http.Request) catalog.Project {
	sectorID, _ := strconv.Atoi(r.PostFormValue("sector_id")) //nolint:errcheck // zero fails validation
	return catalog.Project{
		Title:             strings.TrimSpace(r.PostFormValue("title")),
		FeatureImgURL:     strings.TrimSpace(r.PostFormValue("feature_img_url")),
		SummaryShort:      r.PostFormValue("summary_short"),
		IntroShort:        r.PostFormValue("intro_short"),
		Impact:            r.PostFormValue("impact"),
		OriginalSourceURL: strings.TrimSpace(r.PostFormValue("original_source_url")),
		SectorID:          sectorID,
	}
}
