package encounter

import (
	"math"
	"time"

	"github.com/calder-games/skirmish/internal/game/combatant"
)

// Rewards is the outcome payout of one finished encounter.
type Rewards struct {
	XP       int `json:"xp"`
	Currency int `json:"currency"`
	// Loot lists the template ids of enemies whose loot roll succeeded.
	Loot []string `json:"loot,omitempty"`
}

// Participant is one combatant's summary line in a battle report.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Hero        bool   `json:"hero"`
	DamageDealt int    `json:"damage_dealt"`
	DamageTaken int    `json:"damage_taken"`
	HealingDone int    `json:"healing_done"`
	Kills       int    `json:"kills"`
}

// Report is the persisted record of one finished encounter.
type Report struct {
	SessionID    string        `json:"session_id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Rounds       int           `json:"rounds"`
	Victory      bool          `json:"victory"`
	Rewards      Rewards       `json:"rewards"`
	Participants []Participant `json:"participants"`
}

// computeRewards sums the defeated enemies' reward values, scales them by the
// configured multipliers and the party's average level, and rolls loot per
// defeated enemy. A lost encounter pays the configured defeat fraction.
//
// Postcondition: XP and Currency are >= 0.
func (m *Manager) computeRewards(s *Session, victory bool) Rewards {
	var xp, currency float64
	var loot []string

	for _, eh := range s.Arena.Team(combatant.TeamEnemies) {
		e := s.Arena.Get(eh)
		if e.Alive() {
			continue
		}
		xp += float64(e.RewardXP)
		currency += float64(e.RewardCurrency)
		if victory && e.LootChance > 0 && m.src.Float64() < e.LootChance {
			loot = append(loot, e.TemplateID)
		}
	}

	// Higher-level parties earn proportionally more; AverageLevel is zero
	// only for an empty roster, which Start rejects.
	levelScale := 1 + float64(m.party.AverageLevel())*0.05
	xp *= m.rewardsCfg.XPScale * levelScale
	currency *= m.rewardsCfg.CurrencyScale

	if !victory {
		xp *= m.rewardsCfg.DefeatFraction
		currency *= m.rewardsCfg.DefeatFraction
		loot = nil
	}

	return Rewards{
		XP:       int(math.Floor(xp)),
		Currency: int(math.Floor(currency)),
		Loot:     loot,
	}
}

// buildReport assembles the battle report from the session and the damage
// ledger, listing participants in registration order.
func (m *Manager) buildReport(s *Session, victory bool, rewards Rewards) Report {
	ledger := m.resolver.Ledger()
	participants := make([]Participant, 0, s.Arena.Len())
	for _, h := range s.Arena.All() {
		c := s.Arena.Get(h)
		t := ledger.Totals(c.ID)
		participants = append(participants, Participant{
			ID:          c.ID,
			Name:        c.Name,
			Hero:        c.IsHero(),
			DamageDealt: t.DamageDealt,
			DamageTaken: t.DamageTaken,
			HealingDone: t.HealingDone,
			Kills:       t.Kills,
		})
	}
	return Report{
		SessionID:    s.ID,
		StartedAt:    s.StartedAt,
		Duration:     time.Duration(s.elapsed * float64(time.Second)),
		Rounds:       s.Round,
		Victory:      victory,
		Rewards:      rewards,
		Participants: participants,
	}
}
