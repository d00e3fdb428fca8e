package effect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseTypeRoundTrip(t *testing.T) {
	types := []Type{TypeStun, TypeBleed, TypePoison, TypeShield, TypeRegeneration, TypeAttackBuff, TypeDefenseBuff}
	for _, typ := range types {
		parsed, err := ParseType(typ.String())
		if err != nil {
			t.Errorf("ParseType(%q): %v", typ.String(), err)
			continue
		}
		if parsed != typ {
			t.Errorf("ParseType(%q) = %v, want %v", typ.String(), parsed, typ)
		}
	}
}

func TestParseTypeUnknown(t *testing.T) {
	if _, err := ParseType("curse"); err == nil {
		t.Error("ParseType should reject unknown types")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "effects.yaml"), []byte(`
effects:
  - type: poison
    per_tick: 7
    default_duration: 6
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cat := NewCatalog()
	if err := cat.LoadOverrides(dir); err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	def := cat.Get(TypePoison)
	if def.PerTick != 7 || def.DefaultDuration != 6 {
		t.Errorf("override not applied: %+v", def)
	}
	if !def.Stackable {
		t.Error("unset override fields should keep defaults")
	}
}

func TestLoadOverridesRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
effects:
  - type: curse
    per_tick: 7
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewCatalog().LoadOverrides(dir); err == nil {
		t.Error("unknown effect type should be rejected")
	}
}
