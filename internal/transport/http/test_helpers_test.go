package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildchat/internal/config"
	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/metrics"
	"github.com/vovakirdan/guildchat/internal/proto"
)

// wireOutbound mirrors proto.Outbound with the payload left undecoded.
type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	acl, err := cfg.AccessTable()
	if err != nil {
		t.Fatalf("access table: %v", err)
	}

	logger := zerolog.Nop()
	hub := core.NewHub(acl, core.WithLogger(&logger))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, &cfg, &logger, metrics.New().Handler())
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	readUntil(t, ctx, conn, core.EventUserConnected.String())
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", typ, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads frames until the named event (or "error") arrives.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) wireOutbound {
	t.Helper()

	for {
		var out wireOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("waiting for %s: %v", name, err)
		}
		if name == proto.OutboundTypeError && out.Type == proto.OutboundTypeError {
			return out
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == name {
			return out
		}
	}
}

func join(t *testing.T, ctx context.Context, conn *websocket.Conn, username string) {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypeJoinChat, proto.JoinChatData{Username: username})
	readUntil(t, ctx, conn, core.EventUserPermissions.String())
}

func decodeData[T any](t *testing.T, out wireOutbound) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(out.Data, &v); err != nil {
		t.Fatalf("decode %s payload: %v", out.Event, err)
	}
	return v
}
