package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/config"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/time/rate"
)

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	authHandler AuthHandler,
	reviewHandler ReviewHandler,
	deadlineHandler DeadlineHandler,
	organizationHandler OrganizationHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "performance-review"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Get("/supervisors", authHandler.ListSupervisors)

			// Logout also works with an expired access token
			r.With(jwtauth.Verifier(JWTService.JWTAuth())).Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/me", reviewHandler.GetMyReview)
				r.Get("/employees/{employeeID}", reviewHandler.GetEmployeeReview)

				r.Route("/{reviewID}", func(r chi.Router) {
					r.Put("/", reviewHandler.SaveReview)
					r.Put("/employee-comment", reviewHandler.SaveEmployeeComment)
					r.Post("/goals", reviewHandler.AddGoal)
					r.Delete("/goals/{goalID}", reviewHandler.DeleteGoal)

					// Supervisor and HR only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionReviewRate))
						r.Put("/supervisor-comment", reviewHandler.SaveSupervisorComment)
						r.Put("/kpi-ratings", reviewHandler.SaveKPIRatings)
						r.Put("/skills", reviewHandler.SaveSkills)
					})
				})
			})

			r.Route("/deadline", func(r chi.Router) {
				r.Get("/", deadlineHandler.Check)
				r.With(middleware.RequireHRManager).Post("/sweep", deadlineHandler.Sweep)
			})

			r.With(middleware.RequireSupervisor).Get("/team", organizationHandler.GetTeam)

			r.Route("/organization", func(r chi.Router) {
				r.Use(middleware.RequireHRManager)
				r.Get("/", organizationHandler.GetOrganization)
				r.Put("/assignments", organizationHandler.AssignSupervisor)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/reviews", reportHandler.GetReviewReport)
				r.Get("/summary", reportHandler.GetSummary)
			})
		})
	})
	return r
}
