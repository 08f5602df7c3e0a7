package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildchat/internal/config"
	"github.com/vovakirdan/guildchat/internal/core"
)

// NewServer builds the HTTP server. /ws bypasses gin so the upgrade can hijack
// the connection; gin serves health, metrics and the REST API.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger, metrics stdhttp.Handler) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", newRouter(hub, logger, metrics))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func newRouter(hub *core.Hub, logger *zerolog.Logger, metrics stdhttp.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	servers := NewServerHandlers(hub, logger)
	users := NewUserHandlers(hub, logger)
	api := router.Group("/api")
	{
		api.GET("/servers", servers.ListServers)
		api.GET("/servers/:serverId/channels", servers.ListChannels)
		api.GET("/servers/:serverId/channels/:channelId/messages", servers.ListMessages)
		api.GET("/servers/:serverId/channels/:channelId/typing", servers.ListTypers)

		api.GET("/users", users.ListOnline)
		api.GET("/users/:username", users.GetUser)
	}
	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
