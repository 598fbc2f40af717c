package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/secureguard-backend/api/controllers"
	"github.com/angelmondragon/secureguard-backend/api/middleware"
	"github.com/angelmondragon/secureguard-backend/internal/admins"
	"github.com/angelmondragon/secureguard-backend/internal/auth"
	"github.com/angelmondragon/secureguard-backend/internal/dashboard"
	"github.com/angelmondragon/secureguard-backend/internal/guards"
	"github.com/angelmondragon/secureguard-backend/internal/supervisors"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/metrics"
)

type gate interface {
	middleware.Authenticator
	middleware.Authorizer
}

// Dependencies carries everything the HTTP surface is built from.
type Dependencies struct {
	Gate        gate
	Auth        auth.Service
	Admins      admins.Service
	Supervisors supervisors.Service
	Guards      guards.Service
	Dashboard   dashboard.Service

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Readiness      []controllers.ReadinessCheck
	ResetSchema    controllers.SchemaResetter
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	authenticated := middleware.Auth(deps.Gate, logg)
	adminOnly := middleware.RequireRole(deps.Gate, logg, enums.RoleAdmin)
	nonProd := !cfg.App.IsProd()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Readiness...))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		if nonProd {
			r.Get("/seed-admin", controllers.AdminSeed(deps.Admins, cfg.Bootstrap, logg))
		}
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/me", controllers.AuthMe(logg))
			r.Put("/change-password", controllers.AuthChangePassword(deps.Auth, logg))
			r.Put("/profile", controllers.AuthUpdateProfile(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		if nonProd {
			r.Post("/create-admin", controllers.AdminCreate(deps.Admins, logg))
		}
		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Get("/dashboard", controllers.DashboardStats(deps.Dashboard, logg))
			r.Route("/supervisors", func(r chi.Router) { supervisorRoutes(r, deps, logg) })
			r.Route("/admins", func(r chi.Router) { adminRoutes(r, deps, logg) })
			r.Route("/accounts", func(r chi.Router) { adminRoutes(r, deps, logg) })
		})
	})

	r.Route("/api/supervisors", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		supervisorRoutes(r, deps, logg)
	})
	r.Route("/api/admins", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		adminRoutes(r, deps, logg)
	})

	if nonProd && deps.ResetSchema != nil {
		r.With(authenticated, adminOnly).Post("/api/reset-database", controllers.ResetDatabase(deps.ResetSchema, deps.Admins, cfg.Bootstrap, logg))
	}

	r.Route("/api/guards", func(r chi.Router) {
		r.Use(authenticated)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(deps.Gate, logg, enums.RoleAdmin, enums.RoleSupervisor))
			r.Get("/", controllers.GuardList(deps.Guards, logg))
			r.Get("/{id}", controllers.GuardGet(deps.Guards, logg))
		})
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", controllers.GuardCreate(deps.Guards, logg))
			r.Put("/{id}", controllers.GuardUpdate(deps.Guards, logg))
			r.Put("/{id}/status", controllers.GuardChangeStatus(deps.Guards, logg))
			r.Put("/{id}/termination-reason", controllers.GuardTerminationReason(deps.Guards, logg))
			r.Delete("/{id}", controllers.GuardDeletePermanent(deps.Guards, logg))
		})
	})

	r.Route("/api/supervisor", func(r chi.Router) {
		r.Use(authenticated, middleware.RequireRole(deps.Gate, logg, enums.RoleSupervisor))
		r.Get("/guards", controllers.MyGuards(deps.Guards, logg))
	})

	return r
}

func supervisorRoutes(r chi.Router, deps Dependencies, logg *logger.Logger) {
	r.Get("/", controllers.SupervisorList(deps.Supervisors, logg))
	r.Post("/", controllers.SupervisorCreate(deps.Supervisors, logg))
	r.Get("/{id}", controllers.SupervisorGet(deps.Supervisors, logg))
	r.Put("/{id}", controllers.SupervisorUpdate(deps.Supervisors, logg))
	r.Put("/{id}/status", controllers.SupervisorChangeStatus(deps.Supervisors, logg))
	r.Put("/{id}/termination-reason", controllers.SupervisorTerminationReason(deps.Supervisors, logg))
	r.Delete("/{id}", controllers.SupervisorTerminate(deps.Supervisors, logg))
	r.Delete("/{id}/permanent", controllers.SupervisorDeletePermanent(deps.Supervisors, logg))
	r.Get("/{id}/guards", controllers.GuardsOfSupervisor(deps.Guards, logg))
}

func adminRoutes(r chi.Router, deps Dependencies, logg *logger.Logger) {
	r.Get("/", controllers.AdminList(deps.Admins, logg))
	r.Post("/", controllers.AdminCreate(deps.Admins, logg))
	r.Put("/{id}", controllers.AdminUpdate(deps.Admins, logg))
	r.Delete("/{id}", controllers.AdminDelete(deps.Admins, logg))
}
