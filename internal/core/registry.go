package core

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// ConnID identifies one transport connection.
type ConnID string

// Session is the live binding of an identity to a connection.
type Session struct {
	Identity  Identity
	Conn      ConnID
	Status    Status
	ServerID  string
	ChannelID string
	JoinedAt  time.Time
}

// Location returns the session's current channel.
func (s Session) Location() ChannelRef {
	return ChannelRef{ServerID: s.ServerID, ChannelID: s.ChannelID}
}

// Registry owns the identity <-> connection binding. At most one session exists
// per identity.
type Registry struct {
	acl *AccessTable

	mu         sync.RWMutex
	byIdentity map[Identity]*Session
	byConn     map[ConnID]Identity
}

// NewRegistry creates an empty registry that places new sessions using acl.
func NewRegistry(acl *AccessTable) *Registry {
	return &Registry{
		acl:        acl,
		byIdentity: make(map[Identity]*Session),
		byConn:     make(map[ConnID]Identity),
	}
}

// Register creates an online session on the identity's default channel. A live
// session for the same identity is replaced and returned as superseded.
func (r *Registry) Register(name Identity, conn ConnID) (Session, *Session, error) {
	id := Canonical(string(name))
	if id == "" {
		return Session{}, nil, fmt.Errorf("%w: empty identity", ErrValidation)
	}
	loc, ok := r.acl.defaultLocation(id)
	if !ok {
		return Session{}, nil, ErrNoAccess
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var superseded *Session
	if prev, exists := r.byIdentity[id]; exists {
		old := *prev
		superseded = &old
		delete(r.byConn, prev.Conn)
	}
	if prevID, bound := r.byConn[conn]; bound && prevID != id {
		delete(r.byIdentity, prevID)
	}

	sess := &Session{
		Identity:  id,
		Conn:      conn,
		Status:    StatusOnline,
		ServerID:  loc.ServerID,
		ChannelID: loc.ChannelID,
		JoinedAt:  time.Now(),
	}
	r.byIdentity[id] = sess
	r.byConn[conn] = id

	return *sess, superseded, nil
}

// Unregister removes the session bound to conn. Unknown connections are ignored.
func (r *Registry) Unregister(conn ConnID) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[conn]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn)
	if sess, exists := r.byIdentity[id]; exists && sess.Conn == conn {
		delete(r.byIdentity, id)
	}
	return id, true
}

// SetStatus updates the identity's status and returns the stored value.
func (r *Registry) SetStatus(name Identity, status Status) (Status, error) {
	id := Canonical(string(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byIdentity[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	sess.Status = status
	return sess.Status, nil
}

// UpdateLocation moves the identity's session to another channel.
func (r *Registry) UpdateLocation(name Identity, serverID, channelID string) error {
	id := Canonical(string(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byIdentity[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	sess.ServerID = serverID
	sess.ChannelID = channelID
	return nil
}

// Lookup returns the session bound to a connection.
func (r *Registry) Lookup(conn ConnID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byConn[conn]
	if !ok {
		return Session{}, false
	}
	sess, ok := r.byIdentity[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Get returns the live session of an identity.
func (r *Registry) Get(name Identity) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.byIdentity[Canonical(string(name))]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// ListOnline returns a sorted snapshot of identities with a live session.
func (r *Registry) ListOnline() []Identity {
	r.mu.RLock()
	ids := make([]Identity, 0, len(r.byIdentity))
	for id := range r.byIdentity {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}
