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

type UserHTTP struct {
	svc *service.AuthService
}

func NewUserHTTP(svc *service.AuthService) *UserHTTP { return &UserHTTP{svc: svc} }

// POST /api/users provisions an account into the caller's company.
func (h *UserHTTP) Provision() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		var in struct {
			Name     string      `json:"name"`
			Email    string      `json:"email"`
			Password string      `json:"password"`
			Role     models.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.ProvisionEmployee(r.Context(), p, in.Name, in.Email, in.Password, in.Role)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// GET /api/users lists the caller's company accounts.
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		users, err := h.svc.ListCompanyUsers(r.Context(), p)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": users})
	}
}

// PATCH /api/users/{id}/role
func (h *UserHTTP) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			utils.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		var in struct {
			Role models.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.UpdateUserRole(r.Context(), p, id, in.Role)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
