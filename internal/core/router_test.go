package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-c.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestRouter_ChannelScopeReachesOnlyMembers(t *testing.T) {
	req := require.New(t)
	r := NewRouter(nil)

	a, b, c := NewClient("a", 4), NewClient("b", 4), NewClient("c", 4)
	for _, cl := range []*Client{a, b, c} {
		r.Attach(cl)
	}
	req.True(r.Join("a", "1", "general"))
	req.True(r.Join("b", "1", "general"))
	req.True(r.Join("c", "1", "random"))
	req.False(r.Join("a", "1", "general"))

	r.Broadcast(ChannelScope("1", "general"), &Event{Kind: EventNewMessage})

	req.Len(drain(a), 1)
	req.Len(drain(b), 1)
	req.Empty(drain(c))

	r.Broadcast(ServerScope("1"), &Event{Kind: EventTypingStart})
	req.Len(drain(a), 1)
	req.Len(drain(c), 1)

	r.Broadcast(GlobalScope(), &Event{Kind: EventUsersUpdate})
	req.Len(drain(a), 1)
	req.Len(drain(b), 1)
	req.Len(drain(c), 1)
}

func TestRouter_SwitchRoom(t *testing.T) {
	req := require.New(t)
	r := NewRouter(nil)

	a := NewClient("a", 4)
	r.Attach(a)
	r.Join("a", "1", "general")

	req.True(r.SwitchRoom("a", "1", "general", "2", "game-chat"))
	req.Equal([]ChannelRef{{ServerID: "2", ChannelID: "game-chat"}}, r.Rooms("a"))
	req.Empty(r.Members("1", "general"))
	req.Equal([]ConnID{"a"}, r.Members("2", "game-chat"))

	r.Broadcast(ChannelScope("1", "general"), &Event{Kind: EventNewMessage})
	req.Empty(drain(a))

	req.False(r.SwitchRoom("ghost", "1", "general", "1", "random"))
}

func TestRouter_DetachRemovesEverything(t *testing.T) {
	req := require.New(t)
	r := NewRouter(nil)

	a := NewClient("a", 4)
	r.Attach(a)
	r.Join("a", "1", "general")
	r.Join("a", "1", "random")

	refs := r.Detach("a")
	req.Len(refs, 2)
	req.Empty(r.Rooms("a"))
	req.Empty(r.Members("1", "general"))

	r.Broadcast(GlobalScope(), &Event{Kind: EventUsersUpdate})
	req.Empty(drain(a))
	req.False(r.Send("a", &Event{Kind: EventError}))
	req.False(r.Leave("a", "1", "general"))
}

func TestRouter_SlowConsumerDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)

	dropped := 0
	r := NewRouter(func(n int) { dropped += n })

	slow, fast := NewClient("slow", 1), NewClient("fast", 8)
	r.Attach(slow)
	r.Attach(fast)
	r.Join("slow", "1", "general")
	r.Join("fast", "1", "general")

	for range 3 {
		r.Broadcast(ChannelScope("1", "general"), &Event{Kind: EventNewMessage})
	}

	req.Len(drain(fast), 3)
	req.Len(drain(slow), 1)
	req.Equal(2, dropped)
}
