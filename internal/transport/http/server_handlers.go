package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/proto"
)

const maxHistoryLimit = 1000

// ServerHandlers serves the read-only REST view of servers, channels and history.
type ServerHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewServerHandlers creates a new server handlers instance.
func NewServerHandlers(hub *core.Hub, logger *zerolog.Logger) *ServerHandlers {
	return &ServerHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListServers returns every configured server in configuration order.
// GET /api/servers
func (h *ServerHandlers) ListServers(c *gin.Context) {
	servers := lo.Map(h.hub.Servers(), func(s core.Server, _ int) proto.ServerInfo { return serverInfo(s) })
	c.JSON(http.StatusOK, servers)
}

// ListChannels returns the channels of a server.
// GET /api/servers/:serverId/channels
func (h *ServerHandlers) ListChannels(c *gin.Context) {
	serverID := c.Param("serverId")

	channels, err := h.hub.Channels(serverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channelsInfo(channels))
}

// ListMessages returns a channel's history, oldest first. The optional limit
// query parameter keeps only the newest messages.
// GET /api/servers/:serverId/channels/:channelId/messages
func (h *ServerHandlers) ListMessages(c *gin.Context) {
	serverID := c.Param("serverId")
	channelID := c.Param("channelId")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 0 and 1000"})
			return
		}
		limit = n
	}

	messages, err := h.hub.History(serverID, channelID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Debug().
		Str("server_id", serverID).
		Str("channel_id", channelID).
		Int("count", len(messages)).
		Msg("history listed")
	c.JSON(http.StatusOK, messagesData(messages))
}

// ListTypers returns who is typing in a channel.
// GET /api/servers/:serverId/channels/:channelId/typing
func (h *ServerHandlers) ListTypers(c *gin.Context) {
	serverID := c.Param("serverId")
	channelID := c.Param("channelId")

	if _, err := h.hub.Access().Channel(serverID, channelID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identities(h.hub.ActiveTypers(serverID, channelID)))
}

func (h *ServerHandlers) respondError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
