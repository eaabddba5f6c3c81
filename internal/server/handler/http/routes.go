package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dkorobov/taskdeck/internal/middleware"
	"github.com/dkorobov/taskdeck/internal/security"
)

// NewRouter constructs the HTTP handler serving the todo API.
//
// Routes:
//
//	GET  /                    → liveness message
//	GET  /health              → health status
//	POST /auth/register       → authHandler.Register
//	POST /auth/login          → authHandler.Login
//	POST /auth/logout         → authHandler.Logout
//	GET  /auth/me             → authHandler.Me        (auth required)
//	POST /todos               → todoHandler.Create    (auth required)
//	GET  /todos               → todoHandler.List      (auth required)
//	GET  /todos/{id}          → todoHandler.Get       (auth required)
//	PUT  /todos/{id}          → todoHandler.Update    (auth required)
//	PATCH /todos/{id}         → todoHandler.Patch     (auth required)
//	DELETE /todos/{id}        → todoHandler.Delete    (auth required)
//	POST /todos/{id}/toggle   → todoHandler.Toggle    (auth required)
//
// Middleware chain: CORS (credentialed, origins from config) → request
// logging → JSON content-type enforcement. Protected groups additionally run
// the cookie-session auth middleware.
func NewRouter(
	authHandler *AuthHandler,
	todoHandler *TodoHandler,
	codec *security.TokenCodec,
	logger *zap.Logger,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.WithRequestLogging(logger))
	// Only allow requests with Content-Type: application/json (bodyless
	// requests pass through).
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "todo API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/auth", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Protected group: requires a valid session cookie
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(codec))
			r.Get("/me", authHandler.Me)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(middleware.Auth(codec))

		r.Post("/", todoHandler.Create)
		r.Get("/", todoHandler.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", todoHandler.Get)
			r.Put("/", todoHandler.Update)
			r.Patch("/", todoHandler.Patch)
			r.Delete("/", todoHandler.Delete)
			r.Post("/toggle", todoHandler.Toggle)
		})
	})

	return r
}
