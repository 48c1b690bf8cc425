package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emmanuelnwankwo/api-template/internal/auth"
	"github.com/emmanuelnwankwo/api-template/internal/service"
	"github.com/emmanuelnwankwo/api-template/pkg/health"
	"github.com/emmanuelnwankwo/api-template/pkg/httputil"
	"github.com/emmanuelnwankwo/api-template/pkg/middleware"
)

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(
	accountService *service.AccountService,
	tokens *auth.TokenService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("account"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Auth endpoints (public)
	authHandler := NewAuthHandler(accountService, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/verify", authHandler.VerifyEmail)
		r.Post("/reset-password", authHandler.RequestPasswordReset)
		r.Get("/reset-password", authHandler.ConfirmPasswordResetLink)
		r.Post("/password/reset/{email}", authHandler.ResetPassword)
		r.Get("/logout", authHandler.Logout)
	})

	// Profile endpoints (auth required, identity must match the path).
	// Authenticate is mounted inside the {userId} subrouter so the route
	// param is bound before the identity check runs.
	userHandler := NewUserHandler(accountService, logger)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/{userId}", func(r chi.Router) {
			r.Use(Authenticate(tokens))

			r.Get("/", userHandler.GetUser)
			r.Patch("/edit", userHandler.UpdateUser)
			r.Delete("/", userHandler.DeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(w, http.StatusNotFound, "Endpoint Not Found")
	})

	return r
}
