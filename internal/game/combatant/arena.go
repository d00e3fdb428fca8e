package combatant

// Handle is an index into an Arena. Handles are stable for the lifetime of
// one encounter; combatants are never removed mid-session, only marked dead
// by their health reaching zero.
type Handle int

// Arena owns every combatant participating in one encounter.
//
// Registration order is preserved: all heroes are added before all enemies,
// and iteration helpers return handles in that original order, which is the
// stable processing order guaranteed within a tick.
//
// The Arena is not safe for concurrent use; the encounter manager serialises
// access through its tick loop.
type Arena struct {
	members []*Combatant
	byID    map[string]Handle
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{byID: make(map[string]Handle)}
}

// Add registers c and returns its handle.
//
// Precondition: c must be non-nil with a non-empty, unused ID.
func (a *Arena) Add(c *Combatant) Handle {
	h := Handle(len(a.members))
	a.members = append(a.members, c)
	a.byID[c.ID] = h
	return h
}

// Get returns the live combatant for h. The returned pointer is the single
// owned runtime record; mutations through it are visible to all components.
//
// Precondition: h must have been returned by Add on this arena.
func (a *Arena) Get(h Handle) *Combatant {
	return a.members[h]
}

// Lookup returns the handle for the combatant with the given id.
func (a *Arena) Lookup(id string) (Handle, bool) {
	h, ok := a.byID[id]
	return h, ok
}

// Len returns the number of registered combatants.
func (a *Arena) Len() int { return len(a.members) }

// All returns every handle in registration order.
func (a *Arena) All() []Handle {
	out := make([]Handle, len(a.members))
	for i := range a.members {
		out[i] = Handle(i)
	}
	return out
}

// Team returns the handles of every combatant on team, in registration order.
func (a *Arena) Team(team Team) []Handle {
	var out []Handle
	for i, c := range a.members {
		if c.Team == team {
			out = append(out, Handle(i))
		}
	}
	return out
}

// Living returns the handles of every living combatant on team, in
// registration order.
func (a *Arena) Living(team Team) []Handle {
	var out []Handle
	for i, c := range a.members {
		if c.Team == team && c.Alive() {
			out = append(out, Handle(i))
		}
	}
	return out
}

// TeamWiped reports whether no combatant on team is still alive.
func (a *Arena) TeamWiped(team Team) bool {
	for _, c := range a.members {
		if c.Team == team && c.Alive() {
			return false
		}
	}
	return true
}
