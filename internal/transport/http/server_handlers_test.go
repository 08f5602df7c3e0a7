package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/proto"
)

func getJSON(t *testing.T, client *http.Client, url string, dst any) int {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func TestListServers(t *testing.T) {
	ts := startTestServer(t, nil)

	var servers []proto.ServerInfo
	status := getJSON(t, ts.Client(), ts.URL+"/api/servers", &servers)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, servers, 3)
	require.Equal(t, "1", servers[0].ID)
	require.Equal(t, "My Server", servers[0].Name)
	require.Equal(t, "general", servers[0].Channels[0].ID)
}

func TestListChannels(t *testing.T) {
	ts := startTestServer(t, nil)

	var channels []proto.ChannelInfo
	status := getJSON(t, ts.Client(), ts.URL+"/api/servers/2/channels", &channels)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, channels, 3)
	require.Equal(t, "voice-general", channels[2].ID)
	require.Equal(t, "voice", channels[2].Type)

	var errResp ErrorResponse
	status = getJSON(t, ts.Client(), ts.URL+"/api/servers/nope/channels", &errResp)
	require.Equal(t, http.StatusNotFound, status)
	require.NotEmpty(t, errResp.Error)
}

func TestListMessages(t *testing.T) {
	ts := startTestServer(t, nil)
	url := ts.URL + "/api/servers/1/channels/random/messages"

	var empty []proto.MessageData
	status := getJSON(t, ts.Client(), url, &empty)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	join(t, ctx, conn, "alice")
	for _, text := range []string{"one", "two", "three"} {
		send(t, ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{Text: text, ServerID: "1", ChannelID: "random"})
	}
	// new_message is not delivered outside the room; history is read back instead.
	send(t, ctx, conn, proto.InboundTypeGetMessages, proto.ChannelData{ServerID: "1", ChannelID: "random"})
	history := decodeData[proto.EventMessagesHistory](t, readUntil(t, ctx, conn, core.EventMessagesHistory.String()))
	require.Len(t, history.Messages, 3)

	var all []proto.MessageData
	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), url, &all))
	require.Len(t, all, 3)
	require.Equal(t, "one", all[0].Text)
	require.Equal(t, "alice", all[0].User)

	var newest []proto.MessageData
	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), url+"?limit=2", &newest))
	require.Len(t, newest, 2)
	require.Equal(t, "two", newest[0].Text)
	require.Equal(t, "three", newest[1].Text)

	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.Client(), url+"?limit=abc", nil))
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.Client(), ts.URL+"/api/servers/1/channels/missing/messages", nil))
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.Client(), ts.URL+"/api/servers/9/channels/general/messages", nil))
}

func TestListTypers(t *testing.T) {
	ts := startTestServer(t, nil)
	url := ts.URL + "/api/servers/1/channels/general/typing"

	var typers []string
	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), url, &typers))
	require.Empty(t, typers)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	join(t, ctx, conn, "bob")
	send(t, ctx, conn, proto.InboundTypeTypingStart, proto.TypingData{ServerID: "1", ChannelID: "general"})
	readUntil(t, ctx, conn, core.EventTypingStart.String())

	require.Equal(t, http.StatusOK, getJSON(t, ts.Client(), url, &typers))
	require.Equal(t, []string{"bob"}, typers)

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.Client(), ts.URL+"/api/servers/1/channels/nope/typing", nil))
}
