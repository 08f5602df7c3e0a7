package core

// Room is the set of connections currently in one channel.
type Room struct {
	Ref     ChannelRef
	clients map[ConnID]*Client
}

// NewRoom constructs a room with no clients.
func NewRoom(ref ChannelRef) *Room {
	return &Room{
		Ref:     ref,
		clients: make(map[ConnID]*Client),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c.ID]; exists {
		return false
	}
	r.clients[c.ID] = c
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(id ConnID) bool {
	if _, exists := r.clients[id]; !exists {
		return false
	}
	delete(r.clients, id)
	return true
}

// Has reports whether the connection is in the room.
func (r *Room) Has(id ConnID) bool {
	_, ok := r.clients[id]
	return ok
}

// Broadcast sends an event to all clients in the room and returns how many
// deliveries were dropped.
func (r *Room) Broadcast(event *Event) int {
	dropped := 0
	for _, client := range r.clients {
		if !client.deliver(event) {
			// Drop if slow consumer.
			dropped++
		}
	}
	return dropped
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
