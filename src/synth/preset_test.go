package synth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresetManager(t *testing.T) {
	dir := t.TempDir()
	pm := NewPresetManager(dir)
	list, err := pm.List()
	expectNoError(t, err)
	expectEqual(t, len(list), 0)

	s := New()
	s.SetInstrument(0, plainInstrument())
	s.SetControlParams(ControlParams{DivisionNum: 2, LogLevel: 0})
	expectNoError(t, pm.Save("bright", s))
	expectNoError(t, pm.Save("dark", s))
	expectNoError(t, pm.Save("bright", s))

	list, err = pm.List()
	expectNoError(t, err)
	expectEqual(t, len(list), 2)

	// a fresh manager reads the list back from disk
	pm2 := NewPresetManager(dir)
	list, err = pm2.List()
	expectNoError(t, err)
	if len(list) != 2 || list[0] != "bright" || list[1] != "dark" {
		t.Fatalf("unexpected list %v", list)
	}

	other := New()
	expectNoError(t, pm2.Apply("bright", other))
	expectEqual(t, other.Instrument(0), s.Instrument(0))
	expectEqual(t, other.ControlParams(), s.ControlParams())

	if _, err := os.Stat(filepath.Join(dir, "bright.json")); err != nil {
		t.Errorf("preset file missing: %v", err)
	}
}

func TestPresetManagerErrors(t *testing.T) {
	pm := NewPresetManager(t.TempDir())
	s := New()
	for _, name := range []string{"", "_list", ".hidden", "../up", "a/b"} {
		if err := pm.Save(name, s); err == nil {
			t.Errorf("%q: expected an error", name)
		}
	}
	if err := pm.Apply("missing", s); err == nil {
		t.Errorf("expected an error for a missing preset")
	}
}
