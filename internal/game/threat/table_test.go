package threat

import (
	"testing"

	"pgregory.net/rapid"
)

func TestAddAccumulates(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 100)
	tbl.Add("e1", "h1", 50)
	if got := tbl.Value("e1", "h1"); got != 150 {
		t.Errorf("Value = %g, want 150", got)
	}
}

func TestAddClampsAtZero(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 100)
	tbl.Add("e1", "h1", -500)
	if got := tbl.Value("e1", "h1"); got != 0 {
		t.Errorf("Value = %g, want 0", got)
	}
}

func TestHighest(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 100)
	tbl.Add("e1", "h2", 300)

	id, v, ok := tbl.Highest("e1")
	if !ok || id != "h2" || v != 300 {
		t.Errorf("Highest = (%q, %g, %v), want (h2, 300, true)", id, v, ok)
	}

	if _, _, ok := tbl.Highest("e2"); ok {
		t.Error("Highest for unknown enemy should report !ok")
	}
}

func TestTauntSetsMaxPlusBonus(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 800)
	tbl.Add("e1", "h2", 200)

	tbl.Taunt("e1", "h2", 1000)
	if got := tbl.Value("e1", "h2"); got != 1800 {
		t.Errorf("taunted threat = %g, want 1800", got)
	}

	id, _, _ := tbl.Highest("e1")
	if id != "h2" {
		t.Errorf("taunter should hold top threat, got %q", id)
	}
}

func TestDecayWithNoiseFloor(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 100)
	tbl.Add("e1", "h2", 0.005)

	tbl.Decay(0.1)
	if got := tbl.Value("e1", "h1"); got != 90 {
		t.Errorf("decayed threat = %g, want 90", got)
	}
	if got := tbl.Value("e1", "h2"); got != 0 {
		t.Errorf("sub-floor threat should drop to 0, got %g", got)
	}
}

func TestClearAndReset(t *testing.T) {
	tbl := NewTable()
	tbl.Add("e1", "h1", 100)
	tbl.Add("e2", "h1", 100)

	tbl.Clear("e1")
	if tbl.Value("e1", "h1") != 0 {
		t.Error("Clear should drop the enemy's entries")
	}
	if tbl.Value("e2", "h1") != 100 {
		t.Error("Clear should not touch other enemies")
	}

	tbl.Reset()
	if tbl.Value("e2", "h1") != 0 {
		t.Error("Reset should drop everything")
	}
}

func TestPropertyThreatNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := NewTable()
		n := rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < n; i++ {
			amount := rapid.Float64Range(-1000, 1000).Draw(t, "amount")
			tbl.Add("e1", "h1", amount)
			if v := tbl.Value("e1", "h1"); v < 0 {
				t.Fatalf("threat went negative: %g", v)
			}
		}
	})
}

func TestPropertyTauntAlwaysTop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := NewTable()
		heroes := []string{"h1", "h2", "h3"}
		n := rapid.IntRange(0, 30).Draw(t, "ops")
		for i := 0; i < n; i++ {
			h := rapid.SampledFrom(heroes).Draw(t, "hero")
			tbl.Add("e1", h, rapid.Float64Range(0, 500).Draw(t, "amount"))
		}
		bonus := rapid.Float64Range(1, 1000).Draw(t, "bonus")
		tbl.Taunt("e1", "h1", bonus)
		id, _, ok := tbl.Highest("e1")
		if !ok || id != "h1" {
			t.Fatalf("taunter is not top threat holder: %q", id)
		}
	})
}
