package core

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ScopeKind selects which connections a broadcast reaches.
type ScopeKind int

const (
	// ScopeGlobal reaches every attached connection.
	ScopeGlobal ScopeKind = iota
	// ScopeServer reaches connections in any channel of one server.
	ScopeServer
	// ScopeChannel reaches connections in exactly one channel.
	ScopeChannel
)

// Scope is the delivery target of a broadcast.
type Scope struct {
	Kind      ScopeKind
	ServerID  string
	ChannelID string
}

// GlobalScope targets every connection.
func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

// ServerScope targets members of any channel of the server.
func ServerScope(serverID string) Scope {
	return Scope{Kind: ScopeServer, ServerID: serverID}
}

// ChannelScope targets members of one channel.
func ChannelScope(serverID, channelID string) Scope {
	return Scope{Kind: ScopeChannel, ServerID: serverID, ChannelID: channelID}
}

// Router tracks channel membership of connections and is the only path by which
// events leave the core.
type Router struct {
	onDrop func(n int)

	mu      sync.RWMutex
	clients map[ConnID]*Client
	rooms   map[ChannelRef]*Room
	joined  map[ConnID]map[ChannelRef]struct{}
}

// NewRouter creates a router. onDrop, if set, is told how many deliveries a
// broadcast dropped because of full client queues.
func NewRouter(onDrop func(n int)) *Router {
	return &Router{
		onDrop:  onDrop,
		clients: make(map[ConnID]*Client),
		rooms:   make(map[ChannelRef]*Room),
		joined:  make(map[ConnID]map[ChannelRef]struct{}),
	}
}

// Attach makes a connection deliverable.
func (r *Router) Attach(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Detach removes a connection from every room and from delivery. It returns the
// rooms the connection was in.
func (r *Router) Detach(id ConnID) []ChannelRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	refs := r.leaveAll(id)
	delete(r.clients, id)
	return refs
}

// Join adds a connection to a channel.
func (r *Router) Join(id ConnID, serverID, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.join(id, ChannelRef{ServerID: serverID, ChannelID: channelID})
}

// Leave removes a connection from a channel.
func (r *Router) Leave(id ConnID, serverID, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leave(id, ChannelRef{ServerID: serverID, ChannelID: channelID})
}

// LeaveAll removes a connection from every channel but keeps it attached.
func (r *Router) LeaveAll(id ConnID) []ChannelRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveAll(id)
}

// SwitchRoom moves a connection between channels in one step.
func (r *Router) SwitchRoom(id ConnID, fromServer, fromChannel, toServer, toChannel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return false
	}
	r.leave(id, ChannelRef{ServerID: fromServer, ChannelID: fromChannel})
	return r.join(id, ChannelRef{ServerID: toServer, ChannelID: toChannel})
}

// Rooms lists the channels a connection is in.
func (r *Router) Rooms(id ConnID) []ChannelRef {
	r.mu.RLock()
	refs := lo.Keys(r.joined[id])
	r.mu.RUnlock()

	slices.SortFunc(refs, compareRefs)
	return refs
}

// Members lists the connections in a channel.
func (r *Router) Members(serverID, channelID string) []ConnID {
	r.mu.RLock()
	room, ok := r.rooms[ChannelRef{ServerID: serverID, ChannelID: channelID}]
	var ids []ConnID
	if ok {
		ids = lo.Keys(room.clients)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Send delivers an event to a single connection.
func (r *Router) Send(id ConnID, event *Event) bool {
	r.mu.RLock()
	c, ok := r.clients[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if !c.deliver(event) {
		r.dropped(1)
		return false
	}
	return true
}

// Broadcast delivers an event to every connection matching the scope. Delivery
// never blocks; full queues drop the event for that connection only.
func (r *Router) Broadcast(scope Scope, event *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dropped := 0
	switch scope.Kind {
	case ScopeGlobal:
		for _, c := range r.clients {
			if !c.deliver(event) {
				dropped++
			}
		}
	case ScopeServer:
		for ref, room := range r.rooms {
			if ref.ServerID == scope.ServerID {
				dropped += room.Broadcast(event)
			}
		}
	case ScopeChannel:
		if room, ok := r.rooms[ChannelRef{ServerID: scope.ServerID, ChannelID: scope.ChannelID}]; ok {
			dropped += room.Broadcast(event)
		}
	}
	r.dropped(dropped)
}

func (r *Router) join(id ConnID, ref ChannelRef) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	room, ok := r.rooms[ref]
	if !ok {
		room = NewRoom(ref)
		r.rooms[ref] = room
	}
	if !room.AddClient(c) {
		return false
	}
	refs, ok := r.joined[id]
	if !ok {
		refs = make(map[ChannelRef]struct{})
		r.joined[id] = refs
	}
	refs[ref] = struct{}{}
	return true
}

func (r *Router) leave(id ConnID, ref ChannelRef) bool {
	room, ok := r.rooms[ref]
	if !ok || !room.RemoveClient(id) {
		return false
	}
	if room.Empty() {
		delete(r.rooms, ref)
	}
	if refs, ok := r.joined[id]; ok {
		delete(refs, ref)
		if len(refs) == 0 {
			delete(r.joined, id)
		}
	}
	return true
}

func (r *Router) leaveAll(id ConnID) []ChannelRef {
	refs := lo.Keys(r.joined[id])
	for _, ref := range refs {
		r.leave(id, ref)
	}
	slices.SortFunc(refs, compareRefs)
	return refs
}

func (r *Router) dropped(n int) {
	if n > 0 && r.onDrop != nil {
		r.onDrop(n)
	}
}
