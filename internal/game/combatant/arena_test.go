package combatant

import "testing"

func buildArena() (*Arena, []Handle) {
	a := NewArena()
	members := []*Combatant{
		{ID: "h1", Team: TeamHeroes, Stats: Stats{Health: 10, MaxHealth: 10}},
		{ID: "h2", Team: TeamHeroes, Stats: Stats{Health: 10, MaxHealth: 10}},
		{ID: "e1", Team: TeamEnemies, Stats: Stats{Health: 10, MaxHealth: 10}},
		{ID: "e2", Team: TeamEnemies, Stats: Stats{Health: 10, MaxHealth: 10}},
	}
	handles := make([]Handle, len(members))
	for i, m := range members {
		handles[i] = a.Add(m)
	}
	return a, handles
}

func TestArenaLookup(t *testing.T) {
	a, handles := buildArena()
	h, ok := a.Lookup("e1")
	if !ok {
		t.Fatal("Lookup(e1) not found")
	}
	if h != handles[2] {
		t.Errorf("Lookup(e1) = %d, want %d", h, handles[2])
	}
	if _, ok := a.Lookup("missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
}

func TestArenaIterationOrder(t *testing.T) {
	a, _ := buildArena()
	var ids []string
	for _, h := range a.All() {
		ids = append(ids, a.Get(h).ID)
	}
	want := []string{"h1", "h2", "e1", "e2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("All() order = %v, want %v", ids, want)
		}
	}
}

func TestArenaLivingSkipsDead(t *testing.T) {
	a, handles := buildArena()
	a.Get(handles[0]).ApplyDamage(10)

	living := a.Living(TeamHeroes)
	if len(living) != 1 || a.Get(living[0]).ID != "h2" {
		t.Errorf("Living(heroes) should contain only h2, got %d entries", len(living))
	}
}

func TestArenaTeamWiped(t *testing.T) {
	a, handles := buildArena()
	if a.TeamWiped(TeamEnemies) {
		t.Fatal("enemies should not start wiped")
	}
	a.Get(handles[2]).ApplyDamage(10)
	a.Get(handles[3]).ApplyDamage(10)
	if !a.TeamWiped(TeamEnemies) {
		t.Error("enemies should be wiped after both die")
	}
	if a.TeamWiped(TeamHeroes) {
		t.Error("heroes should not be wiped")
	}
}
