package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/guildchat/internal/core"
)

// UserHandlers serves the REST view of online users.
type UserHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(hub *core.Hub, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		hub: hub,
		log: logger,
	}
}

// UserResponse represents an online user in API responses.
type UserResponse struct {
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	ServerID  string    `json:"serverId"`
	ChannelID string    `json:"channelId"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// ListOnline returns online users, optionally filtered by a name fragment.
// GET /api/users?q=query
func (h *UserHandlers) ListOnline(c *gin.Context) {
	query := string(core.Canonical(c.Query("q")))

	names := h.hub.OnlineUsers()
	if query != "" {
		names = lo.Filter(names, func(id core.Identity, _ int) bool {
			return strings.Contains(string(id), query)
		})
	}

	response := make([]UserResponse, 0, len(names))
	for _, name := range names {
		// The user may leave between the two reads.
		sess, ok := h.hub.Session(string(name))
		if !ok {
			continue
		}
		response = append(response, userResponse(sess))
	}
	c.JSON(http.StatusOK, response)
}

// GetUser returns one online user.
// GET /api/users/:username
func (h *UserHandlers) GetUser(c *gin.Context) {
	sess, ok := h.hub.Session(c.Param("username"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user is not online"})
		return
	}
	c.JSON(http.StatusOK, userResponse(sess))
}

func userResponse(sess core.Session) UserResponse {
	return UserResponse{
		Username:  string(sess.Identity),
		Status:    string(sess.Status),
		ServerID:  sess.ServerID,
		ChannelID: sess.ChannelID,
		JoinedAt:  sess.JoinedAt,
	}
}
