package core

import (
	"context"
	"testing"
	"time"
)

func demoDefs() []ServerDef {
	return []ServerDef{
		{
			Server: Server{ID: "1", Name: "My Server", Icon: "🏠", Channels: []Channel{
				{ID: "general", Name: "general", Type: ChannelText},
				{ID: "random", Name: "random", Type: ChannelText},
				{ID: "announcements", Name: "announcements", Type: ChannelText},
			}},
			Members: []Member{{Name: "alice", Role: RoleAdmin}, {Name: "bob"}, {Name: "charlie"}, {Name: "diana"}},
		},
		{
			Server: Server{ID: "2", Name: "Gaming", Icon: "🎮", Channels: []Channel{
				{ID: "general", Name: "general", Type: ChannelText},
				{ID: "game-chat", Name: "game-chat", Type: ChannelText},
				{ID: "voice-general", Name: "Voice General", Type: ChannelVoice},
			}},
			Members: []Member{{Name: "alice", Role: RoleAdmin}, {Name: "charlie"}, {Name: "eve"}},
		},
		{
			Server: Server{ID: "3", Name: "Work", Icon: "💼", Channels: []Channel{
				{ID: "general", Name: "general", Type: ChannelText},
				{ID: "projects", Name: "projects", Type: ChannelText},
				{ID: "meeting-room", Name: "Meeting Room", Type: ChannelVoice},
			}},
			Members: []Member{{Name: "Bob", Role: RoleAdmin}, {Name: "diana"}, {Name: "frank"}},
		},
	}
}

func newTestAccessTable(t testing.TB) *AccessTable {
	t.Helper()

	acl, err := NewAccessTable(demoDefs())
	if err != nil {
		t.Fatalf("build access table: %v", err)
	}
	return acl
}

func startTestHub(t testing.TB, opts ...Option) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(newTestAccessTable(t), opts...)
	go hub.Run(ctx)
	return hub
}

// connectClient registers a client and waits for the connect greeting.
func connectClient(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id, 256)
	hub.RegisterClient(c)
	mustEvent(t, c.Events, EventUserConnected)
	return c
}

// joinClient connects a client and joins it as name, waiting for the join to finish.
func joinClient(t *testing.T, hub *Hub, id, name string) *Client {
	t.Helper()

	c := connectClient(t, hub, id)
	c.Commands <- &Command{Kind: CommandJoinChat, Username: name}
	mustEvent(t, c.Events, EventUserPermissions)
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}
