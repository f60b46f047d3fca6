package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crewbooks/crewbooks/internal/api/middlewares"
	"github.com/crewbooks/crewbooks/internal/config"
	"github.com/crewbooks/crewbooks/internal/model/user"
)

type CustomRouter struct {
	router *chi.Mux
	logger *slog.Logger
	cfg    *config.Config
}

func New(cfg *config.Config, log *slog.Logger) *CustomRouter {
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
		cfg:    cfg,
	}

	return router
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type TransactionsHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	ListAssigned(w http.ResponseWriter, r *http.Request)
	ListAccepted(w http.ResponseWriter, r *http.Request)
	ListAcceptedPaged(w http.ResponseWriter, r *http.Request)
	DirectorList(w http.ResponseWriter, r *http.Request)
	DirectorPending(w http.ResponseWriter, r *http.Request)
	DirectorRejected(w http.ResponseWriter, r *http.Request)
	DirectorSummary(w http.ResponseWriter, r *http.Request)
}

type StatisticsHandler interface {
	CurrentStatistics(w http.ResponseWriter, r *http.Request)
	StatisticsHistory(w http.ResponseWriter, r *http.Request)
	HourlyStatistics(w http.ResponseWriter, r *http.Request)
}

type NotificationsHandler interface {
	ListNotifications(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
	MarkAllRead(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	AssignManager(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	AuthHandler
	TransactionsHandler
	StatisticsHandler
	NotificationsHandler
	UsersHandler
	HealthHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Authentication(
				[]byte(cr.cfg.SecretKey), cr.logger))

			r.Route("/transactions", func(r chi.Router) {
				r.With(middleware.AllowContentType("application/json")).
					Post("/", h.Submit)
				r.Get("/my", h.ListMine)
				r.Get("/accepted", h.ListAccepted)
				r.Get("/accepted/paged", h.ListAcceptedPaged)

				r.Group(func(r chi.Router) {
					r.Use(middlewares.RequireRole(user.RoleManager, cr.logger))
					r.Get("/pending", h.ListPending)
					r.Get("/assigned", h.ListAssigned)
					r.With(middleware.AllowContentType("application/json")).
						Post("/{id}/review", h.Review)
				})
			})

			r.Route("/statistics", func(r chi.Router) {
				r.Get("/current", h.CurrentStatistics)
				r.Get("/history", h.StatisticsHistory)
				r.Get("/hourly", h.HourlyStatistics)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Get("/unread-count", h.UnreadCount)
				r.Post("/{id}/read", h.MarkRead)
				r.Post("/read-all", h.MarkAllRead)
			})

			r.Route("/director", func(r chi.Router) {
				r.Use(middlewares.RequireRole(user.RoleDirector, cr.logger))
				r.Get("/transactions", h.DirectorList)
				r.Get("/transactions/pending", h.DirectorPending)
				r.Get("/transactions/rejected", h.DirectorRejected)
				r.Get("/summary", h.DirectorSummary)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.ListUsers)
					r.Get("/{id}", h.GetUser)
					r.With(middleware.AllowContentType("application/json")).
						Post("/", h.CreateUser)
					r.With(middleware.AllowContentType("application/json")).
						Post("/{id}/assign-manager", h.AssignManager)
				})
			})
		})
	})
	cr.router.Get("/ping", h.Ping)

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}
