package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinChat binds an identity to the connection.
	CommandJoinChat CommandKind = iota
	// CommandSendMessage posts a message to a channel.
	CommandSendMessage
	// CommandGetUsers asks for the online identities.
	CommandGetUsers
	// CommandGetMessages asks for a channel's history.
	CommandGetMessages
	// CommandTypingStart marks the identity as typing in a channel.
	CommandTypingStart
	// CommandTypingStop clears the typing mark.
	CommandTypingStop
	// CommandUpdateStatus changes the session status.
	CommandUpdateStatus
	// CommandSwitchChannel moves the connection to another channel.
	CommandSwitchChannel
)

var commandNames = map[CommandKind]string{
	CommandJoinChat:      "join_chat",
	CommandSendMessage:   "send_message",
	CommandGetUsers:      "get_users",
	CommandGetMessages:   "get_messages",
	CommandTypingStart:   "typing_start",
	CommandTypingStop:    "typing_stop",
	CommandUpdateStatus:  "update_status",
	CommandSwitchChannel: "switch_channel",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client. Username is optional on
// everything but join; when set it must match the session identity. Empty
// ServerID/ChannelID default to the session's current channel.
type Command struct {
	Kind      CommandKind
	Username  string
	ServerID  string
	ChannelID string
	Text      string
	Status    string
}
