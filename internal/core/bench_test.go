package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkChannelBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := make([]Member, 0, recipients+1)
	for i := range recipients + 1 {
		members = append(members, Member{Name: fmt.Sprintf("user%d", i)})
	}
	acl, err := NewAccessTable([]ServerDef{{
		Server:  Server{ID: "bench", Channels: []Channel{{ID: "general", Type: ChannelText}}},
		Members: members,
	}})
	if err != nil {
		b.Fatalf("access table: %v", err)
	}

	hub := NewHub(acl)
	go hub.Run(ctx)

	buffer := 4*recipients + 64
	sender := NewClient("sender", buffer)
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoinChat, Username: "user0"}

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i), buffer)
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinChat, Username: fmt.Sprintf("user%d", i+1)}
		clients = append(clients, c)
	}

	for _, c := range append([]*Client{sender}, clients...) {
		for ev := range c.Events {
			if ev.Kind == EventUserPermissions {
				break
			}
		}
	}

	// Drain events for the sender and all but the first recipient to avoid backpressure.
	target := clients[0]
	for _, c := range append(clients[1:], sender) {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{Kind: CommandSendMessage, Text: "payload"}
		for ev := range target.Events {
			if ev.Kind == EventNewMessage {
				break
			}
		}
	}
}

func BenchmarkChannelBroadcast_10(b *testing.B)  { benchmarkChannelBroadcast(b, 10) }
func BenchmarkChannelBroadcast_100(b *testing.B) { benchmarkChannelBroadcast(b, 100) }
func BenchmarkChannelBroadcast_500(b *testing.B) { benchmarkChannelBroadcast(b, 500) }
