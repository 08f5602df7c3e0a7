package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserConnected greets a freshly connected client.
	EventUserConnected EventKind = iota
	// EventUserJoined announces a new session to everyone.
	EventUserJoined
	// EventUserLeft announces a closed session to everyone.
	EventUserLeft
	// EventUsersUpdate carries the online identities.
	EventUsersUpdate
	// EventServersData delivers the caller's accessible servers.
	EventServersData
	// EventUserPermissions delivers the ids of the caller's accessible servers.
	EventUserPermissions
	// EventNewMessage notifies channel members about a stored message.
	EventNewMessage
	// EventMessagesHistory delivers a channel's history to the caller.
	EventMessagesHistory
	// EventTypingStart notifies channel members that someone is typing.
	EventTypingStart
	// EventTypingStop notifies channel members that someone stopped typing.
	EventTypingStop
	// EventUserStatusUpdate announces a status change to everyone.
	EventUserStatusUpdate
	// EventChannelSwitched confirms a channel switch to the caller.
	EventChannelSwitched
	// EventSessionSuperseded tells a connection its session moved elsewhere.
	EventSessionSuperseded
	// EventError notifies the caller about a domain error.
	EventError
)

var eventNames = map[EventKind]string{
	EventUserConnected:     "user_connected",
	EventUserJoined:        "user_joined",
	EventUserLeft:          "user_left",
	EventUsersUpdate:       "users_update",
	EventServersData:       "servers_data",
	EventUserPermissions:   "user_permissions",
	EventNewMessage:        "new_message",
	EventMessagesHistory:   "messages_history",
	EventTypingStart:       "typing_start",
	EventTypingStop:        "typing_stop",
	EventUserStatusUpdate:  "user_status_update",
	EventChannelSwitched:   "channel_switched",
	EventSessionSuperseded: "session_superseded",
	EventError:             "error",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
// Events are shared between recipients and must not be modified after sending.
type Event struct {
	Kind      EventKind
	User      Identity
	Users     []Identity // EventUsersUpdate
	Servers   []Server   // EventServersData, EventUserPermissions
	ServerID  string
	ChannelID string
	Status    Status
	Message   Message
	Messages  []Message // EventMessagesHistory
	Error     *CoreError
}
