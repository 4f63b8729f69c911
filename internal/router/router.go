package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/config"
	"github.com/editorjakupi/testning-av-crmsystem/internal/handlers"
	"github.com/editorjakupi/testning-av-crmsystem/internal/metrics"
	"github.com/editorjakupi/testning-av-crmsystem/internal/middleware"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/session"
)

type Deps struct {
	Auth     *service.AuthService
	Issues   *service.IssueService
	Forms    *service.FormService
	Sessions *session.Manager
	Users    repository.UserRepository
	Stats    *metrics.Collector
	Gatherer prometheus.Gatherer
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithSession(d.Sessions))
	if d.Stats != nil {
		r.Use(middleware.HTTPMetrics(d.Stats))
	}
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Get("/healthz", handlers.Health())

	ah := handlers.NewAuthHTTP(d.Auth, d.Sessions, d.Users)
	ih := handlers.NewIssueHTTP(d.Issues)
	fh := handlers.NewFormHTTP(d.Forms, d.Issues)
	uh := handlers.NewUserHTTP(d.Auth)
	rh := handlers.NewReportsHTTP(d.Issues)

	r.Route("/api", func(r chi.Router) {
		// Public surface: registration, login and the per-company forms.
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Route("/forms/{company}", func(r chi.Router) {
			r.Get("/", fh.PublicForm())
			r.Post("/issues", fh.CreateIssue())
		})

		// Everything below needs an established session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", ah.Me())

			r.Route("/issues", func(r chi.Router) {
				r.Get("/", ih.List())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ih.Get())
					r.Post("/updates", ih.AddUpdate())
					r.Patch("/state", ih.ChangeState())
				})
			})

			r.Route("/subjects", func(r chi.Router) {
				r.Get("/", fh.ListSubjects())
				r.Post("/", fh.AddSubject())
				r.Delete("/{id}", fh.RemoveSubject())
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", uh.List())
				r.Post("/", uh.Provision())
				r.Patch("/{id}/role", uh.UpdateRole())
			})

			r.Get("/reports/summary", rh.Summary())
		})
	})

	return r
}
