package core

import "time"

// Message is the domain model for a chat message. Messages are immutable once
// appended to the store.
type Message struct {
	ID        string
	Seq       int64
	ServerID  string
	ChannelID string
	Author    Identity
	Text      string
	CreatedAt time.Time
}
