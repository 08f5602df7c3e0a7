package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/proto"
)

func TestOnlineUsers(t *testing.T) {
	ts := startTestServer(t, nil)

	var users []UserResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), ts.URL+"/api/users", &users))
	require.Empty(t, users)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts)
	join(t, ctx, alice, "alice")
	frank := dialWS(t, ctx, ts)
	join(t, ctx, frank, "Frank")

	send(t, ctx, frank, proto.InboundTypeUpdateStatus, proto.UpdateStatusData{Status: "busy"})
	readUntil(t, ctx, frank, core.EventUserStatusUpdate.String())

	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), ts.URL+"/api/users", &users))
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "frank", users[1].Username)

	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), ts.URL+"/api/users?q=FR", &users))
	require.Len(t, users, 1)
	require.Equal(t, "frank", users[0].Username)

	var user UserResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), ts.URL+"/api/users/frank", &user))
	require.Equal(t, "busy", user.Status)
	require.Equal(t, "3", user.ServerID)
	require.Equal(t, "general", user.ChannelID)
	require.False(t, user.JoinedAt.IsZero())

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.Client(), ts.URL+"/api/users/bob", nil))
}
