package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/leta-relay/internal/auth"
	"github.com/vovakirdan/leta-relay/internal/config"
	"github.com/vovakirdan/leta-relay/internal/core"
)

// NewServer builds an HTTP server with health, WebSocket and admin routes.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(hub, logger)
	router.GET("/", api.Health)
	router.GET("/health", api.Health)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	// The admin roster is only served when tokens can be verified.
	if jwtCfg := jwtConfig(cfg); jwtCfg != nil {
		rooms := NewRoomHandlers(hub, logger)
		admin := router.Group("/api")
		admin.Use(AuthMiddleware(jwtCfg, logger), RequireRole(core.RoleAdmin))
		admin.GET("/rooms/:roomId/users", rooms.ListUsers)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func jwtConfig(cfg *config.Config) *auth.JWTConfig {
	if cfg.JWTSecret == "" {
		return nil
	}
	return &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}
}
