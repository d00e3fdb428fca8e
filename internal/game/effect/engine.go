package effect

// Engine owns the per-combatant active-effect tables for one encounter.
// It is not safe for concurrent use; the encounter tick loop serialises access.
type Engine struct {
	catalog *Catalog
	sets    map[string]*ActiveSet
}

// NewEngine creates an Engine drawing definitions from catalog.
//
// Precondition: catalog must not be nil.
func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		panic("effect.NewEngine: catalog must not be nil")
	}
	return &Engine{catalog: catalog, sets: make(map[string]*ActiveSet)}
}

// set returns the ActiveSet for combatantID, creating it lazily.
func (e *Engine) set(combatantID string) *ActiveSet {
	s, ok := e.sets[combatantID]
	if !ok {
		s = NewActiveSet()
		e.sets[combatantID] = s
	}
	return s
}

// Apply applies the effect of type t to combatantID and returns its Def.
// duration <= 0 selects the catalog default.
//
// Postcondition: the effect is active on combatantID.
func (e *Engine) Apply(combatantID string, t Type, duration int, custom Custom) *Def {
	def := e.catalog.Get(t)
	e.set(combatantID).Apply(def, duration, custom)
	return def
}

// ProcessTick advances combatantID's effects by one status tick.
//
// Contract: invoke exactly once per status tick per living combatant; the
// call is not idempotent.
func (e *Engine) ProcessTick(combatantID string) TickResult {
	s, ok := e.sets[combatantID]
	if !ok {
		return TickResult{StatMods: map[string]float64{}}
	}
	return s.Tick()
}

// Absorb consumes up to amount from combatantID's shield and returns the
// portion absorbed.
func (e *Engine) Absorb(combatantID string, amount int) int {
	s, ok := e.sets[combatantID]
	if !ok {
		return 0
	}
	return s.Absorb(amount)
}

// ShieldAmount exposes the remaining shield absorb for the resolver.
func (e *Engine) ShieldAmount(combatantID string) int {
	s, ok := e.sets[combatantID]
	if !ok {
		return 0
	}
	return s.ShieldAmount()
}

// StatModifier returns combatantID's summed modifier fraction for stat.
func (e *Engine) StatModifier(combatantID, stat string) float64 {
	s, ok := e.sets[combatantID]
	if !ok {
		return 0
	}
	return s.StatModifier(stat)
}

// Stunned reports whether combatantID currently has a stun entry.
func (e *Engine) Stunned(combatantID string) bool {
	s, ok := e.sets[combatantID]
	return ok && s.Has(TypeStun)
}

// Stacks returns the stack count of t on combatantID, or 0.
func (e *Engine) Stacks(combatantID string, t Type) int {
	s, ok := e.sets[combatantID]
	if !ok {
		return 0
	}
	return s.Stacks(t)
}

// Clear drops all effects for combatantID.
func (e *Engine) Clear(combatantID string) {
	delete(e.sets, combatantID)
}

// Reset drops every combatant's effects. Called when an encounter ends.
func (e *Engine) Reset() {
	e.sets = make(map[string]*ActiveSet)
}
