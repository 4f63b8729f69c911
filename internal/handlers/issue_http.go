package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/editorjakupi/testning-av-crmsystem/internal/middleware"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type IssueHTTP struct {
	svc *service.IssueService
}

func NewIssueHTTP(svc *service.IssueService) *IssueHTTP { return &IssueHTTP{svc: svc} }

func issueID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// GET /api/issues?state=&limit=&offset=
func (h *IssueHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		qv := r.URL.Query()

		var state *models.IssueState
		if s := qv.Get("state"); s != "" {
			parsed, err := models.ParseIssueState(s)
			if err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid state filter")
				return
			}
			state = &parsed
		}
		limit := utils.QueryInt(qv, "limit", 50)
		offset := utils.QueryInt(qv, "offset", 0)

		items, total, err := h.svc.List(r.Context(), p, state, limit, offset)
		if err != nil {
			fail(w, p, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// GET /api/issues/{id}
func (h *IssueHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		id, ok := issueID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		issue, err := h.svc.Get(r.Context(), p, id)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, issue)
	}
}

// POST /api/issues/{id}/updates
func (h *IssueHTTP) AddUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		id, ok := issueID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		var in struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		update, err := h.svc.AddUpdate(r.Context(), p, id, in.Text)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusCreated, update)
	}
}

// PATCH /api/issues/{id}/state
func (h *IssueHTTP) ChangeState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		id, ok := issueID(r)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		var in struct {
			State models.IssueState `json:"state"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		issue, err := h.svc.ChangeState(r.Context(), p, id, in.State)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, issue)
	}
}
