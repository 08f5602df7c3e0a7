package core

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageStore is an append-only, in-memory log of messages per channel.
// Appends to different channels do not contend with each other.
type MessageStore struct {
	now   func() time.Time
	newID func() string

	mu   sync.RWMutex
	logs map[ChannelRef]*channelLog
}

type channelLog struct {
	mu       sync.Mutex
	messages []Message
	last     time.Time
}

// NewMessageStore creates an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		now:   time.Now,
		newID: uuid.NewString,
		logs:  make(map[ChannelRef]*channelLog),
	}
}

// Append stores a message and returns it with id, sequence and timestamp set.
// Callers must authorize the author before appending.
func (s *MessageStore) Append(serverID, channelID string, author Identity, text string) Message {
	log := s.channel(ChannelRef{ServerID: serverID, ChannelID: channelID}, true)

	log.mu.Lock()
	defer log.mu.Unlock()

	// Timestamps never go backwards within a channel; ties keep arrival order.
	ts := s.now()
	if ts.Before(log.last) {
		ts = log.last
	}
	log.last = ts

	msg := Message{
		ID:        s.newID(),
		Seq:       int64(len(log.messages)) + 1,
		ServerID:  serverID,
		ChannelID: channelID,
		Author:    author,
		Text:      text,
		CreatedAt: ts,
	}
	log.messages = append(log.messages, msg)
	return msg
}

// History returns every message of the channel, oldest first.
func (s *MessageStore) History(serverID, channelID string) []Message {
	return s.Recent(serverID, channelID, 0)
}

// Recent returns the last n messages of the channel, oldest first. n <= 0 means all.
func (s *MessageStore) Recent(serverID, channelID string, n int) []Message {
	log := s.channel(ChannelRef{ServerID: serverID, ChannelID: channelID}, false)
	if log == nil {
		return []Message{}
	}

	log.mu.Lock()
	defer log.mu.Unlock()

	msgs := log.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return slices.Clone(msgs)
}

// Count returns how many messages the channel holds.
func (s *MessageStore) Count(serverID, channelID string) int {
	log := s.channel(ChannelRef{ServerID: serverID, ChannelID: channelID}, false)
	if log == nil {
		return 0
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	return len(log.messages)
}

func (s *MessageStore) channel(ref ChannelRef, create bool) *channelLog {
	s.mu.RLock()
	log, ok := s.logs[ref]
	s.mu.RUnlock()
	if ok || !create {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.logs[ref]; !ok {
		log = &channelLog{}
		s.logs[ref] = log
	}
	return log
}
