package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/guildchat/internal/proto"
)

// outbound keeps the payload raw so each event can be decoded by name.
type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "alice", "username to join with")
	server := flag.String("server", "", "server id (defaults to the joined location)")
	channel := flag.String("channel", "", "channel id (defaults to the joined location)")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeJoinChat, proto.JoinChatData{Username: *user}); err != nil {
		return err
	}

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if out.Type == proto.OutboundTypeError {
			return fmt.Errorf("server error %s: %s", out.Error.Code, out.Error.Message)
		}
		fmt.Printf("event=%s data=%s\n", out.Event, out.Data)

		switch out.Event {
		case "user_permissions":
			if err := send(proto.InboundTypeSendMessage, proto.SendMessageData{
				Text:      *text,
				ServerID:  *server,
				ChannelID: *channel,
			}); err != nil {
				return err
			}
		case "new_message":
			var evt proto.EventNewMessage
			if err := json.Unmarshal(out.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal new_message: %w", err)
			}
			m := evt.Message
			fmt.Printf("message %s in %s/%s from %s: %q at %s\n",
				m.ID, m.ServerID, m.ChannelID, m.User, m.Text, m.Timestamp.Format(time.RFC3339))
			return nil
		}
	}
}
