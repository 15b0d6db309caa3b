package rest

import (
	"context"
	"net/http"
	"time"

	core_port "github.com/jsamit27/ava/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Observability /metrics и счетчики запросов, может быть nil
type Observability interface {
	Handler() http.Handler
	InstrumentHandler(next http.Handler) http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string,
	allowedOrigins []string,
	sessionHandlers *SessionHandler,
	metrics Observability,
	baseLogger core_port.LoggerPort) *Server {

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           NewRouter(allowedOrigins, sessionHandlers, metrics, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter маршруты чата, страница и служебные эндпоинты
func NewRouter(allowedOrigins []string, sessionHandlers *SessionHandler, metrics Observability, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	if metrics != nil {
		r.Use(metrics.InstrumentHandler)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: !allowsAnyOrigin(allowedOrigins),
		MaxAge:           300,
	}))

	r.Get("/", IndexPage)
	r.Get("/health", Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/init", sessionHandlers.Init)
		r.Post("/chat", sessionHandlers.Chat)
		r.Get("/logs", sessionHandlers.Logs)
	})

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
