package app

import (
	"net/http"
	"time"
	"todoList/internal/config"
	"todoList/internal/handlers"
	"todoList/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	maxBodyBytes = 100 << 10
	corsMaxAge   = 300
)

// NewRouter собирает маршруты /api, /health и раздачу статики из static
func NewRouter(cfg *config.Config, todoHandler *handlers.TodoHandler, static afero.Fs) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIdHeader},
		ExposedHeaders: []string{middleware.RequestIdHeader},
		MaxAge:         corsMaxAge,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRPM))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", handlers.Handle(todoHandler.Root)) // GET /api/

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", handlers.Handle(todoHandler.GetTodos))  // GET /api/todos
			r.Post("/", handlers.Handle(todoHandler.PostTodo)) // POST /api/todos

			r.Patch("/{id}", handlers.Handle(todoHandler.PatchTodo))   // PATCH /api/todos/{id}
			r.Delete("/{id}", handlers.Handle(todoHandler.DeleteTodo)) // DELETE /api/todos/{id}
		})
	})

	r.Get("/health", todoHandler.HealthCheck)

	r.Handle("/*", http.FileServer(afero.NewHttpFs(static).Dir(cfg.Static.Dir)))

	return otelhttp.NewHandler(r, "todo-list",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}))
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetServerAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
