package resolve

// Totals aggregates one combatant's numeric contribution to an encounter.
type Totals struct {
	DamageDealt int
	DamageTaken int
	HealingDone int
	Kills       int
}

// Ledger accumulates per-combatant damage and healing statistics for the
// lifetime of one encounter. It feeds the battle report and end-of-combat
// events; nothing in the core reads it back for decisions.
type Ledger struct {
	totals map[string]*Totals
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{totals: make(map[string]*Totals)}
}

// entry returns the Totals for id, creating it lazily.
func (l *Ledger) entry(id string) *Totals {
	t, ok := l.totals[id]
	if !ok {
		t = &Totals{}
		l.totals[id] = t
	}
	return t
}

// RecordDamage credits attackerID (may be empty for effect ticks) with
// amount dealt and debits targetID with amount taken.
func (l *Ledger) RecordDamage(attackerID, targetID string, amount int) {
	if attackerID != "" {
		l.entry(attackerID).DamageDealt += amount
	}
	l.entry(targetID).DamageTaken += amount
}

// RecordHealing credits healerID with amount of effective healing.
func (l *Ledger) RecordHealing(healerID string, amount int) {
	if healerID != "" {
		l.entry(healerID).HealingDone += amount
	}
}

// RecordKill credits attackerID with one killing blow.
func (l *Ledger) RecordKill(attackerID string) {
	l.entry(attackerID).Kills++
}

// Totals returns the recorded totals for id. The zero value is returned for
// combatants with no recorded activity.
func (l *Ledger) Totals(id string) Totals {
	if t, ok := l.totals[id]; ok {
		return *t
	}
	return Totals{}
}

// All returns a copy of every combatant's totals keyed by id.
func (l *Ledger) All() map[string]Totals {
	out := make(map[string]Totals, len(l.totals))
	for id, t := range l.totals {
		out[id] = *t
	}
	return out
}
