package controller

import "sync"

// EndpointRef is a weak composite-key reference into a device's
// endpoint, used by Group membership so a group never owns the
// endpoints it lists.
type EndpointRef struct {
	IEEEAddress uint64
	Endpoint    byte
}

// Group is a set of endpoint references addressable by a single
// group_id. Created by the first AddMember call, deleted once its
// member set becomes empty.
type Group struct {
	members map[EndpointRef]bool
	mu      sync.RWMutex
	Name    string
	ID      uint16
}

func newGroup(id uint16, name string) *Group {
	return &Group{ID: id, Name: name, members: make(map[EndpointRef]bool)}
}

// AddMember adds ref to the group, reporting whether it was newly
// added.
func (g *Group) AddMember(ref EndpointRef) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.members[ref] {
		return false
	}
	g.members[ref] = true
	return true
}

// RemoveMember removes ref, reporting whether the group is now empty
// and should be deleted by the caller.
func (g *Group) RemoveMember(ref EndpointRef) (empty bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, ref)
	return len(g.members) == 0
}

// RemoveDevice cascades an endpoint removal (or whole-device removal)
// out of the group's membership.
func (g *Group) RemoveDevice(ieee uint64) (empty bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for ref := range g.members {
		if ref.IEEEAddress == ieee {
			delete(g.members, ref)
		}
	}
	return len(g.members) == 0
}

// Members returns a snapshot of the group's current member set.
func (g *Group) Members() []EndpointRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]EndpointRef, 0, len(g.members))
	for ref := range g.members {
		out = append(out, ref)
	}
	return out
}

// groupTable owns every Group by id, created lazily by AddMember.
type groupTable struct {
	groups map[uint16]*Group
	mu     sync.RWMutex
}

func newGroupTable() *groupTable {
	return &groupTable{groups: make(map[uint16]*Group)}
}

func (t *groupTable) get(id uint16) (*Group, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.groups[id]
	return g, ok
}

func (t *groupTable) getOrCreate(id uint16, name string) (*Group, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.groups[id]; ok {
		return g, false
	}
	g := newGroup(id, name)
	t.groups[id] = g
	return g, true
}

func (t *groupTable) delete(id uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups, id)
}

func (t *groupTable) removeDeviceEverywhere(ieee uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, g := range t.groups {
		if g.RemoveDevice(ieee) {
			delete(t.groups, id)
		}
	}
}

func (t *groupTable) all() []*Group {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Group, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, g)
	}
	return out
}
