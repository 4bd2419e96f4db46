package handlers

import (
	"net/http"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/metrics"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/middleware"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/ratelimit"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/gorilla/mux"
)

// RouterConfig wires the API. Metrics and Limiter are optional.
type RouterConfig struct {
	Store        *repositories.Store
	Tokens       *utils.TokenManager
	AuthRequired bool

	Metrics         *metrics.Metrics
	Limiter         ratelimit.Limiter
	RateLimit       int
	RateLimitWindow time.Duration

	CORSOrigins    []string
	RequestTimeout time.Duration
	LogRequests    bool
}

// NewRouter builds the HTTP handler serving the API under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	collaboratorService := services.NewCollaboratorService(cfg.Store)
	projectService := services.NewProjectService(cfg.Store)
	taskService := services.NewTaskService(cfg.Store)
	authService := services.NewAuthService(cfg.Store, cfg.Tokens)

	collaboratorHandler := NewCollaboratorHandler(collaboratorService)
	projectHandler := NewProjectHandler(projectService, taskService)
	taskHandler := NewTaskHandler(taskService)
	authHandler := NewAuthHandler(authService)

	auth := middleware.NewAuth(cfg.Tokens, cfg.AuthRequired)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(NotFound)

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}
	if cfg.LogRequests {
		r.Use(middleware.RequestLogger)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.HandleFunc("/", Root).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if cfg.Limiter != nil && cfg.RateLimit > 0 {
		var onLimited func()
		if cfg.Metrics != nil {
			onLimited = cfg.Metrics.RateLimited
		}
		api.Use(ratelimit.Middleware(cfg.Limiter, cfg.RateLimit, cfg.RateLimitWindow, onLimited))
	}

	api.HandleFunc("/health", Health(cfg.Store.Ping)).Methods("GET")

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")
	authRoutes.Handle("/me", auth.RequireUser(http.HandlerFunc(authHandler.Me))).Methods("GET")

	collaborators := api.PathPrefix("/collaborators").Subrouter()
	collaborators.Use(auth.Authenticate)
	collaborators.HandleFunc("", collaboratorHandler.List).Methods("GET")
	collaborators.HandleFunc("", collaboratorHandler.Create).Methods("POST")
	collaborators.HandleFunc("/available", collaboratorHandler.Available).Methods("GET")
	collaborators.HandleFunc("/{id}", collaboratorHandler.Get).Methods("GET")
	collaborators.HandleFunc("/{id}", collaboratorHandler.Update).Methods("PUT")
	collaborators.HandleFunc("/{id}", collaboratorHandler.Delete).Methods("DELETE")

	projects := api.PathPrefix("/projects").Subrouter()
	projects.Use(auth.Authenticate)
	projects.HandleFunc("", projectHandler.List).Methods("GET")
	projects.HandleFunc("", projectHandler.Create).Methods("POST")
	projects.HandleFunc("/stats", projectHandler.Stats).Methods("GET")
	projects.HandleFunc("/{id}", projectHandler.Get).Methods("GET")
	projects.HandleFunc("/{id}", projectHandler.Update).Methods("PUT")
	projects.HandleFunc("/{id}", projectHandler.Delete).Methods("DELETE")
	projects.HandleFunc("/{id}/tasks", projectHandler.ListTasks).Methods("GET")
	projects.HandleFunc("/{id}/collaborators", projectHandler.AddCollaborator).Methods("POST")
	projects.HandleFunc("/{id}/collaborators/{collaboratorId}", projectHandler.RemoveCollaborator).Methods("DELETE")

	tasks := api.PathPrefix("/tasks").Subrouter()
	tasks.Use(auth.Authenticate)
	tasks.HandleFunc("", taskHandler.List).Methods("GET")
	tasks.HandleFunc("", taskHandler.Create).Methods("POST")
	tasks.HandleFunc("/{id}", taskHandler.Get).Methods("GET")
	tasks.HandleFunc("/{id}", taskHandler.Update).Methods("PUT")
	tasks.HandleFunc("/{id}", taskHandler.Delete).Methods("DELETE")
	tasks.HandleFunc("/{id}/comments", taskHandler.AddComment).Methods("POST")
	tasks.HandleFunc("/{id}/subtasks/{subtaskId}", taskHandler.ToggleSubtask).Methods("PUT")

	// CORS sits outside the router so preflight requests never reach route matching.
	return middleware.Recoverer(middleware.CORS(cfg.CORSOrigins)(r))
}
