package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildchat/internal/config"
	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/proto"
	"github.com/vovakirdan/guildchat/internal/utils"
)

const rateWindow = time.Minute

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub            *core.Hub
	log            *zerolog.Logger
	maxMessage     int64
	clientBuffer   int
	rateLimit      int
	allowedOrigins []string
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:            hub,
		log:            logger,
		maxMessage:     cfg.MaxMessageBytes,
		clientBuffer:   cfg.ClientBuffer,
		rateLimit:      cfg.RateLimit,
		allowedOrigins: cfg.AllowedOrigins,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	opts := &websocket.AcceptOptions{OriginPatterns: h.allowedOrigins}
	if len(h.allowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}

	client := core.NewClient(utils.NewID(), h.clientBuffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(h.rateLimit, rateWindow)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel()
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "connection error"
			h.log.Warn().Err(err).Str("client_id", string(client.ID)).Msg("ws connection closed with error")
		}
	}

	_ = conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if typ != websocket.MessageText || json.Unmarshal(data, &inbound) != nil {
			if err := writeError(ctx, conn, &proto.Error{Code: core.ErrCodeValidation, Message: "malformed message"}); err != nil {
				return err
			}
			continue
		}

		cmd, perr := inboundToCommand(inbound)
		if perr == nil && throttled(cmd.Kind) && !limiter.allow() {
			perr = &proto.Error{Code: core.ErrCodeRateLimited, Message: "too many messages, slow down"}
		}
		if perr != nil {
			h.log.Debug().Str("client_id", string(client.ID)).Str("type", inbound.Type).Str("code", perr.Code).Msg("inbound rejected")
			if err := writeError(ctx, conn, perr); err != nil {
				return err
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-client.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Debug().Err(err).Str("client_id", string(client.ID)).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, perr *proto.Error) error {
	return wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Error: perr})
}

// throttled reports whether a command counts against the connection's rate limit.
func throttled(kind core.CommandKind) bool {
	switch kind {
	case core.CommandSendMessage, core.CommandTypingStart, core.CommandTypingStop:
		return true
	default:
		return false
	}
}
