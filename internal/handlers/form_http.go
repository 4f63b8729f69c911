package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/middleware"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type FormHTTP struct {
	forms  *service.FormService
	issues *service.IssueService
}

func NewFormHTTP(forms *service.FormService, issues *service.IssueService) *FormHTTP {
	return &FormHTTP{forms: forms, issues: issues}
}

// GET /api/forms/{company} is public and reachable by guests.
func (h *FormHTTP) PublicForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, subjects, err := h.forms.PublicForm(r.Context(), chi.URLParam(r, "company"))
		if err != nil {
			// The form URL is published by the company itself, so an honest
			// 404 here is not an enumeration risk.
			utils.Error(w, apperr.Status(err), apperr.Message(err))
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"company":  company.Name,
			"slug":     company.Slug,
			"subjects": subjects,
		})
	}
}

// POST /api/forms/{company}/issues is the public submission endpoint.
// A guest provides an email; a logged-in user is recorded as the submitter.
func (h *FormHTTP) CreateIssue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())

		company, _, err := h.forms.PublicForm(r.Context(), chi.URLParam(r, "company"))
		if err != nil {
			utils.Error(w, apperr.Status(err), apperr.Message(err))
			return
		}

		var in struct {
			SubjectID   int64  `json:"subjectId"`
			Description string `json:"description"`
			Email       string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		sub := service.Submitter{GuestEmail: in.Email}
		if p.Authenticated() {
			uid := p.UserID
			sub = service.Submitter{UserID: &uid}
		}
		issue, err := h.issues.Create(r.Context(), p, company.ID, in.SubjectID, in.Description, sub)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusCreated, issue)
	}
}

// GET /api/subjects
func (h *FormHTTP) ListSubjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		subjects, err := h.forms.ListSubjects(r.Context(), p)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": subjects})
	}
}

// POST /api/subjects
func (h *FormHTTP) AddSubject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		var in struct {
			Label string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		subject, err := h.forms.AddSubject(r.Context(), p, in.Label)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusCreated, subject)
	}
}

// DELETE /api/subjects/{id}
func (h *FormHTTP) RemoveSubject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			utils.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		if err := h.forms.RemoveSubject(r.Context(), p, id); err != nil {
			fail(w, p, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
