package core

// ChannelType tells text rooms from voice rooms.
type ChannelType string

const (
	ChannelText  ChannelType = "text"
	ChannelVoice ChannelType = "voice"
)

// Role is a member's role within a server.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Channel is a room inside a server.
type Channel struct {
	ID   string
	Name string
	Type ChannelType
}

// Server is a named, ordered collection of channels.
type Server struct {
	ID       string
	Name     string
	Icon     string
	Channels []Channel
}

// Channel looks up a channel of the server by id.
func (s Server) Channel(id string) (Channel, bool) {
	for _, ch := range s.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return Channel{}, false
}

// Member grants an identity a role on a server.
type Member struct {
	Name string
	Role Role
}

// ServerDef is the static definition of a server and who may access it.
type ServerDef struct {
	Server  Server
	Members []Member
}

// ChannelRef addresses a channel by its server and channel ids.
type ChannelRef struct {
	ServerID  string
	ChannelID string
}
