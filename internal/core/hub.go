package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const defaultInboxSize = 256

// SessionPolicy decides what happens when an identity joins from a second connection.
type SessionPolicy string

const (
	// PolicySupersede moves the session to the new connection and notifies the old one.
	PolicySupersede SessionPolicy = "supersede"
	// PolicyReject refuses the second join.
	PolicyReject SessionPolicy = "reject"
)

// ParseSessionPolicy validates a policy name. Empty means PolicySupersede.
func ParseSessionPolicy(s string) (SessionPolicy, error) {
	switch p := SessionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicySupersede, nil
	case PolicySupersede, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown session policy %q", ErrValidation, s)
	}
}

// Recorder receives operational counters from the hub.
type Recorder interface {
	ConnectionOpened()
	ConnectionClosed()
	SessionStarted()
	SessionEnded()
	MessageStored(serverID string)
	CommandRejected(command, code string)
	EventsDropped(n int)
}

type nopRecorder struct{}

func (nopRecorder) ConnectionOpened()              {}
func (nopRecorder) ConnectionClosed()              {}
func (nopRecorder) SessionStarted()                {}
func (nopRecorder) SessionEnded()                  {}
func (nopRecorder) MessageStored(string)           {}
func (nopRecorder) CommandRejected(string, string) {}
func (nopRecorder) EventsDropped(int)              {}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(h *Hub) {
		if rec != nil {
			h.rec = rec
		}
	}
}

// WithSessionPolicy sets how a second join of the same identity is handled.
func WithSessionPolicy(policy SessionPolicy) Option {
	return func(h *Hub) {
		if policy != "" {
			h.policy = policy
		}
	}
}

// WithInboxSize sets the capacity of the hub's work queue.
func WithInboxSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.inboxSize = n
		}
	}
}

type envelopeKind int

const (
	envConnect envelopeKind = iota
	envCommand
	envDisconnect
)

type envelope struct {
	kind   envelopeKind
	client *Client
	cmd    *Command
}

// Hub coordinates sessions, messages, typing state and delivery. All mutations
// run on the Run goroutine, one envelope at a time.
type Hub struct {
	acl      *AccessTable
	registry *Registry
	store    *MessageStore
	presence *Presence
	router   *Router

	policy    SessionPolicy
	inboxSize int
	log       *zerolog.Logger
	rec       Recorder

	inbox   chan envelope
	stopped chan struct{}

	// mu makes each handled envelope one transaction for readers of the queries.
	mu sync.RWMutex
}

// NewHub creates a hub over a static access table.
func NewHub(acl *AccessTable, opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		acl:       acl,
		registry:  NewRegistry(acl),
		store:     NewMessageStore(),
		presence:  NewPresence(),
		policy:    PolicySupersede,
		inboxSize: defaultInboxSize,
		log:       &nop,
		rec:       nopRecorder{},
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.inbox = make(chan envelope, h.inboxSize)
	h.router = NewRouter(h.rec.EventsDropped)
	return h
}

// Run processes client work until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	h.log.Info().Str("policy", string(h.policy)).Int("servers", len(h.acl.order)).Msg("hub started")
	for {
		select {
		case env := <-h.inbox:
			h.handle(env)
		case <-ctx.Done():
			h.log.Info().Msg("hub stopped")
			return
		}
	}
}

// RegisterClient connects a client and starts forwarding its commands.
func (h *Hub) RegisterClient(c *Client) {
	if !h.enqueue(envelope{kind: envConnect, client: c}) {
		return
	}
	go h.pump(c)
}

// UnregisterClient disconnects a client and tears down its session.
func (h *Hub) UnregisterClient(c *Client) {
	c.close()
	h.enqueue(envelope{kind: envDisconnect, client: c})
}

func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			if !h.enqueue(envelope{kind: envCommand, client: c, cmd: cmd}) {
				return
			}
		case <-c.done:
			return
		case <-h.stopped:
			return
		}
	}
}

func (h *Hub) enqueue(env envelope) bool {
	select {
	case h.inbox <- env:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) handle(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch env.kind {
	case envConnect:
		h.connect(env.client)
	case envDisconnect:
		h.disconnect(env.client)
	case envCommand:
		select {
		case <-env.client.done:
			return
		default:
		}
		if err := h.dispatch(env.client, env.cmd); err != nil {
			h.reject(env.client, env.cmd, err)
		}
	}
}

func (h *Hub) reject(c *Client, cmd *Command, err error) {
	ce := toCoreError(err)
	h.rec.CommandRejected(cmd.Kind.String(), ce.Code)
	h.log.Debug().
		Str("client_id", string(c.ID)).
		Str("command", cmd.Kind.String()).
		Str("code", ce.Code).
		Err(err).
		Msg("command rejected")
	h.router.Send(c.ID, &Event{Kind: EventError, Error: ce})
}

// Access returns the hub's access table.
func (h *Hub) Access() *AccessTable {
	return h.acl
}

// Servers lists every configured server.
func (h *Hub) Servers() []Server {
	return h.acl.Servers()
}

// Channels lists the channels of a server.
func (h *Hub) Channels(serverID string) ([]Channel, error) {
	return h.acl.Channels(serverID)
}

// History returns up to limit of the newest messages of a channel, oldest first.
// limit <= 0 returns the full history.
func (h *Hub) History(serverID, channelID string, limit int) ([]Message, error) {
	if _, err := h.acl.Channel(serverID, channelID); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store.Recent(serverID, channelID, limit), nil
}

// OnlineUsers returns the identities with a live session.
func (h *Hub) OnlineUsers() []Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry.ListOnline()
}

// Session returns the live session of an identity.
func (h *Hub) Session(name string) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry.Get(Canonical(name))
}

// ActiveTypers returns who is typing in a channel.
func (h *Hub) ActiveTypers(serverID, channelID string) []Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence.ActiveTypers(serverID, channelID)
}

// Members returns the connections currently in a channel.
func (h *Hub) Members(serverID, channelID string) []ConnID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.router.Members(serverID, channelID)
}
