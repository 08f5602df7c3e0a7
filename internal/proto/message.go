package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinChat      = "join_chat"
	InboundTypeSendMessage   = "send_message"
	InboundTypeGetUsers      = "get_users"
	InboundTypeGetMessages   = "get_messages"
	InboundTypeTypingStart   = "typing_start"
	InboundTypeTypingStop    = "typing_stop"
	InboundTypeUpdateStatus  = "update_status"
	InboundTypeSwitchChannel = "switch_channel"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// JoinChatData binds a username to the connection.
type JoinChatData struct {
	Username string `json:"username" validate:"required,max=32"`
}

// SendMessageData posts text to a channel. Omitted ids default to the current channel.
type SendMessageData struct {
	User      string `json:"user,omitempty" validate:"max=32"`
	Text      string `json:"text" validate:"required,max=4000"`
	ServerID  string `json:"serverId,omitempty" validate:"max=64"`
	ChannelID string `json:"channelId,omitempty" validate:"max=64"`
}

// ChannelData addresses a channel, used by get_messages and switch_channel.
type ChannelData struct {
	ServerID  string `json:"serverId,omitempty" validate:"max=64"`
	ChannelID string `json:"channelId,omitempty" validate:"max=64"`
}

// TypingData starts or stops a typing indicator.
type TypingData struct {
	Username  string `json:"username,omitempty" validate:"max=32"`
	ServerID  string `json:"serverId,omitempty" validate:"max=64"`
	ChannelID string `json:"channelId,omitempty" validate:"max=64"`
}

// UpdateStatusData changes the session status. The value is checked
// case-insensitively by the core.
type UpdateStatusData struct {
	Username string `json:"username,omitempty" validate:"max=32"`
	Status   string `json:"status" validate:"required,max=16"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageData is a stored chat message as seen by clients.
type MessageData struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ServerID  string    `json:"serverId"`
	ChannelID string    `json:"channelId"`
}

// ChannelInfo describes a channel of a server.
type ChannelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ServerInfo describes a server and its ordered channels.
type ServerInfo struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Icon     string        `json:"icon"`
	Channels []ChannelInfo `json:"channels"`
}

// EventUserConnected greets a new connection.
type EventUserConnected struct {
	Message string `json:"message"`
}

// EventUser names the identity a presence event is about.
type EventUser struct {
	Username string `json:"username"`
}

// EventUsersUpdate lists online identities.
type EventUsersUpdate struct {
	Users []string `json:"users"`
}

// EventServersData carries the caller's accessible servers keyed by id.
type EventServersData struct {
	Servers map[string]ServerInfo `json:"servers"`
}

// EventUserPermissions lists accessible server ids in configuration order.
type EventUserPermissions struct {
	AccessibleServers []string `json:"accessibleServers"`
}

// EventNewMessage announces a stored message to channel members.
type EventNewMessage struct {
	Message MessageData `json:"message"`
}

// EventMessagesHistory is a channel's history, oldest first.
type EventMessagesHistory struct {
	Messages  []MessageData `json:"messages"`
	ServerID  string        `json:"serverId"`
	ChannelID string        `json:"channelId"`
}

// EventTyping announces a typing start or stop in a channel.
type EventTyping struct {
	Username  string `json:"username"`
	ServerID  string `json:"serverId"`
	ChannelID string `json:"channelId"`
}

// EventUserStatus announces a status change.
type EventUserStatus struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

// EventChannelSwitched confirms the caller's new channel.
type EventChannelSwitched struct {
	ServerID  string `json:"serverId"`
	ChannelID string `json:"channelId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
