package core

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

const defaultChannelID = "general"

// AccessTable is the read-only mapping of identities to the servers they may use.
// It is built once at startup and safe for concurrent reads.
type AccessTable struct {
	order   []string
	servers map[string]Server
	members map[string]map[Identity]Role
}

// NewAccessTable validates the definitions and builds the table. Definition order
// is kept and decides which server is the default for a joining identity.
func NewAccessTable(defs []ServerDef) (*AccessTable, error) {
	t := &AccessTable{
		order:   make([]string, 0, len(defs)),
		servers: make(map[string]Server, len(defs)),
		members: make(map[string]map[Identity]Role, len(defs)),
	}

	for _, def := range defs {
		srv := def.Server
		if srv.ID == "" {
			return nil, fmt.Errorf("%w: server without id", ErrInvalidConfig)
		}
		if _, dup := t.servers[srv.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate server %q", ErrInvalidConfig, srv.ID)
		}
		if len(srv.Channels) == 0 {
			return nil, fmt.Errorf("%w: server %q has no channels", ErrInvalidConfig, srv.ID)
		}

		seen := make(map[string]struct{}, len(srv.Channels))
		for _, ch := range srv.Channels {
			if ch.ID == "" {
				return nil, fmt.Errorf("%w: server %q has a channel without id", ErrInvalidConfig, srv.ID)
			}
			if _, dup := seen[ch.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate channel %q in server %q", ErrInvalidConfig, ch.ID, srv.ID)
			}
			if ch.Type != ChannelText && ch.Type != ChannelVoice {
				return nil, fmt.Errorf("%w: channel %q has unknown type %q", ErrInvalidConfig, ch.ID, ch.Type)
			}
			seen[ch.ID] = struct{}{}
		}

		roles := make(map[Identity]Role, len(def.Members))
		for _, m := range def.Members {
			id := Canonical(m.Name)
			if id == "" {
				return nil, fmt.Errorf("%w: empty member name in server %q", ErrInvalidConfig, srv.ID)
			}
			role := m.Role
			if role == "" {
				role = RoleMember
			}
			if role != RoleAdmin && role != RoleMember {
				return nil, fmt.Errorf("%w: unknown role %q for %q", ErrInvalidConfig, role, m.Name)
			}
			roles[id] = role
		}

		srv.Channels = slices.Clone(srv.Channels)
		t.order = append(t.order, srv.ID)
		t.servers[srv.ID] = srv
		t.members[srv.ID] = roles
	}

	return t, nil
}

// HasAccess reports whether the identity is a member of the server.
func (t *AccessTable) HasAccess(name Identity, serverID string) bool {
	_, ok := t.members[serverID][Canonical(string(name))]
	return ok
}

// CanPost authorizes write actions in a channel. Channel-level overrides are not
// modelled, so it is server membership.
func (t *AccessTable) CanPost(name Identity, serverID, channelID string) bool {
	return t.HasAccess(name, serverID)
}

// Role returns the identity's role on the server.
func (t *AccessTable) Role(name Identity, serverID string) (Role, bool) {
	role, ok := t.members[serverID][Canonical(string(name))]
	return role, ok
}

// AccessibleServers lists the servers the identity belongs to, in configuration order.
func (t *AccessTable) AccessibleServers(name Identity) []Server {
	id := Canonical(string(name))
	ids := lo.Filter(t.order, func(serverID string, _ int) bool {
		_, ok := t.members[serverID][id]
		return ok
	})
	return lo.Map(ids, func(serverID string, _ int) Server {
		return t.servers[serverID]
	})
}

// Servers lists every configured server in configuration order.
func (t *AccessTable) Servers() []Server {
	return lo.Map(t.order, func(serverID string, _ int) Server {
		return t.servers[serverID]
	})
}

// Server looks up a server by id.
func (t *AccessTable) Server(serverID string) (Server, bool) {
	srv, ok := t.servers[serverID]
	return srv, ok
}

// Channels returns the ordered channels of a server.
func (t *AccessTable) Channels(serverID string) ([]Channel, error) {
	srv, ok := t.servers[serverID]
	if !ok {
		return nil, fmt.Errorf("%w: server %q", ErrNotFound, serverID)
	}
	return slices.Clone(srv.Channels), nil
}

// Channel resolves a channel, failing with ErrNotFound for unknown ids.
func (t *AccessTable) Channel(serverID, channelID string) (Channel, error) {
	srv, ok := t.servers[serverID]
	if !ok {
		return Channel{}, fmt.Errorf("%w: server %q", ErrNotFound, serverID)
	}
	ch, ok := srv.Channel(channelID)
	if !ok {
		return Channel{}, fmt.Errorf("%w: channel %q in server %q", ErrNotFound, channelID, serverID)
	}
	return ch, nil
}

// defaultLocation picks the first accessible server and its general channel,
// falling back to the server's first channel.
func (t *AccessTable) defaultLocation(name Identity) (ChannelRef, bool) {
	servers := t.AccessibleServers(name)
	if len(servers) == 0 {
		return ChannelRef{}, false
	}
	return ChannelRef{ServerID: servers[0].ID, ChannelID: defaultChannel(servers[0])}, true
}

// defaultChannel is the server's general channel, or its first channel when it
// has none.
func defaultChannel(srv Server) string {
	if _, ok := srv.Channel(defaultChannelID); ok {
		return defaultChannelID
	}
	return srv.Channels[0].ID
}
