// Package threat implements the per-enemy threat (aggro) tables driving
// defensive targeting.
package threat

// Table maps enemy id to per-hero accumulated threat.
//
// Invariant: every stored value is >= 0. Per-enemy maps are created lazily on
// first reference and cleared when the enemy leaves combat.
//
// The Table is not safe for concurrent use; the encounter tick loop
// serialises access.
type Table struct {
	entries map[string]map[string]float64
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]map[string]float64)}
}

// forEnemy returns the per-hero map for enemyID, creating it lazily.
func (t *Table) forEnemy(enemyID string) map[string]float64 {
	m, ok := t.entries[enemyID]
	if !ok {
		m = make(map[string]float64)
		t.entries[enemyID] = m
	}
	return m
}

// Add accumulates amount of threat from heroID toward enemyID.
// Negative results clamp to zero.
//
// Postcondition: Value(enemyID, heroID) >= 0.
func (t *Table) Add(enemyID, heroID string, amount float64) {
	m := t.forEnemy(enemyID)
	v := m[heroID] + amount
	if v < 0 {
		v = 0
	}
	m[heroID] = v
}

// Value returns the threat heroID holds toward enemyID.
func (t *Table) Value(enemyID, heroID string) float64 {
	if m, ok := t.entries[enemyID]; ok {
		return m[heroID]
	}
	return 0
}

// Highest returns the hero holding the most threat toward enemyID.
//
// Postcondition: Returns ("", 0, false) when no threat is recorded.
func (t *Table) Highest(enemyID string) (heroID string, value float64, ok bool) {
	m, present := t.entries[enemyID]
	if !present || len(m) == 0 {
		return "", 0, false
	}
	for id, v := range m {
		if !ok || v > value {
			heroID, value, ok = id, v, true
		}
	}
	return heroID, value, ok
}

// Taunt sets heroID's threat toward enemyID to the current maximum across
// all entries for that enemy plus bonus, making the taunter strictly the top
// threat holder for any bonus > 0.
//
// Postcondition: Value(enemyID, heroID) == max(previous entries) + bonus.
func (t *Table) Taunt(enemyID, heroID string, bonus float64) {
	m := t.forEnemy(enemyID)
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	m[heroID] = max + bonus
}

// Decay multiplies every threat value by (1 - fraction), dropping values
// below a noise floor to zero so long encounters stay bounded.
//
// Precondition: fraction must be in [0, 1).
func (t *Table) Decay(fraction float64) {
	if fraction <= 0 {
		return
	}
	const floor = 0.01
	for _, m := range t.entries {
		for id, v := range m {
			v *= 1 - fraction
			if v < floor {
				v = 0
			}
			m[id] = v
		}
	}
}

// Clear removes all threat entries for enemyID.
func (t *Table) Clear(enemyID string) {
	delete(t.entries, enemyID)
}

// Reset removes every entry. Called when an encounter ends.
func (t *Table) Reset() {
	t.entries = make(map[string]map[string]float64)
}
