package core

import (
	"cmp"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Presence tracks which identities are typing in which channel.
type Presence struct {
	mu         sync.Mutex
	typing     map[ChannelRef]map[Identity]struct{}
	byIdentity map[Identity]map[ChannelRef]struct{}
}

// NewPresence creates an empty tracker.
func NewPresence() *Presence {
	return &Presence{
		typing:     make(map[ChannelRef]map[Identity]struct{}),
		byIdentity: make(map[Identity]map[ChannelRef]struct{}),
	}
}

// Start marks the identity as typing. It reports whether the set changed.
func (p *Presence) Start(name Identity, serverID, channelID string) bool {
	id := Canonical(string(name))
	ref := ChannelRef{ServerID: serverID, ChannelID: channelID}

	p.mu.Lock()
	defer p.mu.Unlock()

	typers, ok := p.typing[ref]
	if !ok {
		typers = make(map[Identity]struct{})
		p.typing[ref] = typers
	}
	if _, exists := typers[id]; exists {
		return false
	}
	typers[id] = struct{}{}

	refs, ok := p.byIdentity[id]
	if !ok {
		refs = make(map[ChannelRef]struct{})
		p.byIdentity[id] = refs
	}
	refs[ref] = struct{}{}
	return true
}

// Stop clears the identity's typing mark. Absent entries are a no-op.
func (p *Presence) Stop(name Identity, serverID, channelID string) bool {
	id := Canonical(string(name))
	ref := ChannelRef{ServerID: serverID, ChannelID: channelID}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.remove(id, ref)
}

// PurgeIdentity removes the identity from every typing set and returns the
// channels it was removed from.
func (p *Presence) PurgeIdentity(name Identity) []ChannelRef {
	id := Canonical(string(name))

	p.mu.Lock()
	defer p.mu.Unlock()

	refs := lo.Keys(p.byIdentity[id])
	for _, ref := range refs {
		p.remove(id, ref)
	}
	slices.SortFunc(refs, compareRefs)
	return refs
}

// ActiveTypers returns a sorted snapshot of identities typing in the channel.
func (p *Presence) ActiveTypers(serverID, channelID string) []Identity {
	p.mu.Lock()
	ids := lo.Keys(p.typing[ChannelRef{ServerID: serverID, ChannelID: channelID}])
	p.mu.Unlock()

	slices.Sort(ids)
	return ids
}

func (p *Presence) remove(id Identity, ref ChannelRef) bool {
	typers, ok := p.typing[ref]
	if !ok {
		return false
	}
	if _, exists := typers[id]; !exists {
		return false
	}
	delete(typers, id)
	if len(typers) == 0 {
		delete(p.typing, ref)
	}
	if refs, ok := p.byIdentity[id]; ok {
		delete(refs, ref)
		if len(refs) == 0 {
			delete(p.byIdentity, id)
		}
	}
	return true
}

func compareRefs(a, b ChannelRef) int {
	return cmp.Or(cmp.Compare(a.ServerID, b.ServerID), cmp.Compare(a.ChannelID, b.ChannelID))
}
