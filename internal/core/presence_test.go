package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_StartIsIdempotent(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	req.True(p.Start("alice", "1", "general"))
	req.False(p.Start("ALICE", "1", "general"))
	req.Equal([]Identity{"alice"}, p.ActiveTypers("1", "general"))
}

func TestPresence_StopAbsentIsNoop(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	req.False(p.Stop("alice", "1", "general"))

	p.Start("alice", "1", "general")
	req.True(p.Stop("alice", "1", "general"))
	req.False(p.Stop("alice", "1", "general"))
	req.Empty(p.ActiveTypers("1", "general"))
}

func TestPresence_PurgeIdentity(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	p.Start("alice", "2", "general")
	p.Start("alice", "1", "random")
	p.Start("alice", "1", "general")
	p.Start("bob", "1", "general")

	purged := p.PurgeIdentity("Alice")
	req.Equal([]ChannelRef{
		{ServerID: "1", ChannelID: "general"},
		{ServerID: "1", ChannelID: "random"},
		{ServerID: "2", ChannelID: "general"},
	}, purged)

	req.Equal([]Identity{"bob"}, p.ActiveTypers("1", "general"))
	req.Empty(p.ActiveTypers("1", "random"))
	req.Empty(p.ActiveTypers("2", "general"))
	req.Empty(p.PurgeIdentity("alice"))
}
