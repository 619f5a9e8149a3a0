/*
Package handler provides the HTTP handlers and routing setup for the plaza server.

This file defines the main Router, applying middleware (logging, CORS,
IP-based rate limiting) before delegating to the REST and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"plaza/internal/pkg/limiter"
	"plaza/internal/pkg/logx"
	"plaza/internal/pkg/resp"
)

const (
	LoginRate    = 1.0
	LoginBurst   = 5
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router builds the chi routing table: health check, plaza REST API, and the
// viewing-session WebSocket endpoint.
func Router(deps *AppDeps) http.Handler {
	loginLimiter := limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Plaza Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api/plaza", func(api chi.Router) {
		rateLimitedLogin := loginLimiter.Middleware(HandleLogin(deps))
		api.Post("/login", http.HandlerFunc(rateLimitedLogin.ServeHTTP))
		api.Post("/encounter", HandleEncounter(deps))
		api.Get("/roster", HandleRoster(deps))
	})

	r.Get("/ws/plaza", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
