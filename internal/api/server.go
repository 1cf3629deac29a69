// Package api implements the fgac compile API: an HTTP surface that lexes,
// parses, and serializes OpenFGA DSL source, and optionally persists the
// resulting authorization models through an internal/store.Store.
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openfga-dslc/openfga-dslc/internal/store"
	"github.com/openfga-dslc/openfga-dslc/internal/web/auth"
	"github.com/openfga-dslc/openfga-dslc/internal/web/cache"
	"github.com/openfga-dslc/openfga-dslc/internal/web/middleware"
	"github.com/openfga-dslc/openfga-dslc/internal/web/ratelimit"
	"github.com/openfga-dslc/openfga-dslc/internal/web/router"
	"github.com/openfga-dslc/openfga-dslc/internal/web/websocket"
)

// Config configures the compile API handler.
type Config struct {
	Store     store.Store
	AuthMode  string // "jwt", "local", or "none"
	JWTSecret string
	// LocalTokenHash is a bcrypt hash of the shared API token accepted when
	// AuthMode is "local". Ignored otherwise.
	LocalTokenHash string
	Logger         *zap.Logger
}

// Handler bundles the router and its dependencies for the compile API.
type Handler struct {
	router         *router.Router
	store          store.Store
	auth           *auth.AuthService
	localTokenHash string
	hub            *websocket.Hub
	logger         *zap.Logger
}

// NewHandler builds the compile API's http.Handler.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	h := &Handler{
		router: router.NewRouter(),
		store:  cfg.Store,
		logger: logger,
	}

	switch cfg.AuthMode {
	case "jwt":
		h.auth = auth.NewAuthService(cfg.JWTSecret, 24*time.Hour)
	case "local":
		h.localTokenHash = cfg.LocalTokenHash
	}

	h.hub = websocket.NewHub(context.Background())
	h.hub.RegisterHandler("compile", h.handleCompileMessage)
	go h.hub.Run()

	limiter := ratelimit.NewTokenBucketWithConfig(ratelimit.TokenBucketConfig{
		Capacity:        60,
		RefillRate:      time.Second,
		CleanupInterval: time.Minute,
	})
	rateLimitCfg := middleware.DefaultRateLimitConfig(limiter)
	rateLimitCfg.BypassFunc = func(r *http.Request) bool {
		return r.URL.Path == "/v1/ws/compile"
	}

	respCache := cache.NewMemoryCache()
	cacheCfg := cache.DefaultCacheMiddlewareConfig(respCache)
	cacheCfg.TTL = 10 * time.Second
	cacheCfg.SkipPaths = []string{"/v1/ws/compile"}

	h.router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.CORS(),
		middleware.RateLimitWithConfig(rateLimitCfg),
		cache.CacheMiddleware(cacheCfg),
	)

	switch cfg.AuthMode {
	case "jwt":
		h.router.Use(h.requireBearerToken)
	case "local":
		h.router.Use(h.requireLocalToken)
	}

	h.router.Post("/v1/compile", h.handleCompile)
	h.router.Post("/v1/models", h.handleCreateModel)
	h.router.Get("/v1/models", h.handleListModels)
	h.router.Get("/v1/models/{id}", h.handleGetModel)
	h.router.Get("/v1/ws/compile", h.handleWebsocket)

	router.SetupDefaultErrorHandlers(h.router, false)

	return h.router
}
