package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/handler"
	"github.com/dukerupert/grocerylist/internal/middleware"
	"github.com/dukerupert/grocerylist/internal/shopping"
	"github.com/dukerupert/grocerylist/internal/store"
	ws "github.com/dukerupert/grocerylist/internal/websocket"
)

type Config struct {
	Shopping shopping.Config
	// WriteLimit is the number of mutating requests allowed per client IP
	// per minute.
	WriteLimit int
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	svc         *shopping.Service
	itemH       *handler.ItemHandler
	viewH       *handler.ViewHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	itemStore := store.NewItemStore(db)
	settingsStore := store.NewSettingsStore(db)
	svc := shopping.New(itemStore, settingsStore, hub, cfg.Shopping, logger.With("component", "shopping"))

	limit := cfg.WriteLimit
	if limit <= 0 {
		limit = 120
	}

	return &Server{
		db:          db,
		hub:         hub,
		svc:         svc,
		itemH:       handler.NewItemHandler(svc, logger.With("component", "items")),
		viewH:       handler.NewViewHandler(svc, logger.With("component", "view")),
		rateLimiter: middleware.NewRateLimiter(limit, time.Minute),
		logger:      logger,
	}
}

// Service returns the shopping service backing the API.
func (s *Server) Service() *shopping.Service {
	return s.svc
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/categories", s.itemH.Categories)
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.limited(s.itemH.Create))
	mux.HandleFunc("PUT /api/items/{id}", s.limited(s.itemH.Update))
	mux.HandleFunc("DELETE /api/items/{id}", s.limited(s.itemH.Delete))
	mux.HandleFunc("POST /api/items/{id}/toggle", s.limited(s.itemH.Toggle))
	mux.HandleFunc("POST /api/items/delete-completed", s.limited(s.itemH.DeleteCompleted))
	mux.HandleFunc("POST /api/items/essentials", s.limited(s.itemH.AddEssentials))

	mux.HandleFunc("GET /api/sections", s.viewH.Sections)
	mux.HandleFunc("GET /api/view", s.viewH.Get)
	mux.HandleFunc("PUT /api/view", s.limited(s.viewH.Update))

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	var schema int64
	var completed int
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "db unavailable"
		code = http.StatusServiceUnavailable
	} else {
		if schema, err = database.SchemaVersion(s.db); err != nil {
			s.logger.Error("health check", "error", err)
		}
		if completed, err = s.svc.CompletedCount(r.Context()); err != nil {
			s.logger.Error("health check", "error", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"clients":   s.hub.ClientCount(),
		"schema":    schema,
		"completed": completed,
		"seq":       s.hub.Seq(),
	})
}

func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	wrapped := rl(h)
	return wrapped.ServeHTTP
}
