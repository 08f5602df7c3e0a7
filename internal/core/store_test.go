package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageStore_AppendThenHistory(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	req.Empty(store.History("1", "general"))

	first := store.Append("1", "general", "alice", "hi")
	second := store.Append("1", "general", "bob", "hello")
	store.Append("1", "random", "bob", "elsewhere")

	history := store.History("1", "general")
	req.Len(history, 2)
	req.Equal(first, history[0])
	req.Equal(second, history[1])
	req.NotEqual(first.ID, second.ID)
	req.Equal(int64(1), first.Seq)
	req.Equal(int64(2), second.Seq)
	req.Equal("1", second.ServerID)
	req.Equal("general", second.ChannelID)
	req.Equal(Identity("bob"), second.Author)
	req.False(second.CreatedAt.Before(first.CreatedAt))

	req.Equal(1, store.Count("1", "random"))
	req.Equal(0, store.Count("2", "general"))
}

func TestMessageStore_HistoryIsAStablePrefix(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	store.Append("1", "general", "alice", "one")
	before := store.History("1", "general")
	store.Append("1", "general", "alice", "two")
	after := store.History("1", "general")

	req.Len(before, 1)
	req.Len(after, 2)
	req.Equal(before[0], after[0])
}

func TestMessageStore_TimestampsNeverGoBackwards(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	store.now = func() time.Time {
		ts := clock[0]
		clock = clock[1:]
		return ts
	}

	a := store.Append("1", "general", "alice", "a")
	b := store.Append("1", "general", "alice", "b")
	c := store.Append("1", "general", "alice", "c")

	req.Equal(base, a.CreatedAt)
	req.Equal(base, b.CreatedAt)
	req.Equal(base.Add(time.Second), c.CreatedAt)
	req.Less(a.Seq, b.Seq)
}

func TestMessageStore_Recent(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	for i := range 5 {
		store.Append("1", "general", "alice", fmt.Sprintf("m%d", i))
	}

	recent := store.Recent("1", "general", 2)
	req.Len(recent, 2)
	req.Equal("m3", recent[0].Text)
	req.Equal("m4", recent[1].Text)
	req.Len(store.Recent("1", "general", 50), 5)
}

func TestMessageStore_ConcurrentAppends(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	const writers, perWriter = 8, 100
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func(author Identity) {
			defer wg.Done()
			for i := range perWriter {
				store.Append("1", "general", author, fmt.Sprintf("%d", i))
				store.Append("2", "general", author, fmt.Sprintf("%d", i))
			}
		}(Identity(fmt.Sprintf("user%d", w)))
	}
	wg.Wait()

	history := store.History("1", "general")
	req.Len(history, writers*perWriter)
	ids := make(map[string]struct{}, len(history))
	for i, msg := range history {
		req.Equal(int64(i+1), msg.Seq)
		if i > 0 {
			req.False(msg.CreatedAt.Before(history[i-1].CreatedAt))
		}
		ids[msg.ID] = struct{}{}
	}
	req.Len(ids, writers*perWriter)
	req.Equal(writers*perWriter, store.Count("2", "general"))
}
