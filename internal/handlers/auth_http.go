package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/editorjakupi/testning-av-crmsystem/internal/middleware"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/session"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type AuthHTTP struct {
	svc      *service.AuthService
	sessions *session.Manager
	users    repository.UserRepository
}

func NewAuthHTTP(svc *service.AuthService, sessions *session.Manager, users repository.UserRepository) *AuthHTTP {
	return &AuthHTTP{svc: svc, sessions: sessions, users: users}
}

// POST /api/register
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Company  string `json:"company"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in.Name, in.Email, in.Password, in.Company)
		if err != nil {
			fail(w, middleware.PrincipalFrom(r.Context()), err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// POST /api/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Authenticate(r.Context(), in.Email, in.Password)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		token, err := h.sessions.Establish(r.Context(), u)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			// Set Secure behind HTTPS in prod.
			Expires: time.Now().Add(24 * time.Hour),
		})
		utils.JSON(w, http.StatusOK, models.PrincipalFor(u))
	}
}

// POST /api/logout is idempotent; an expired or missing session is a no-op.
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(middleware.SessionCookie); err == nil {
			h.sessions.Logout(r.Context(), c.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		if !p.Authenticated() {
			utils.Error(w, http.StatusUnauthorized, "not authorized")
			return
		}
		u, err := h.users.GetByID(r.Context(), p.UserID)
		if err != nil || u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
