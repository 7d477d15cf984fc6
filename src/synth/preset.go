package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ----- Preset ----- //

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}

// PresetManager reads and writes presets in a directory holding
// "_list.json" and one "<name>.json" per preset.
type PresetManager struct {
	dir  string
	list []string
}

// NewPresetManager ...
func NewPresetManager(dir string) *PresetManager {
	return &PresetManager{
		dir: dir,
	}
}

// List returns the preset names in list order. A missing list is empty.
func (pm *PresetManager) List() ([]string, error) {
	if pm.list == nil {
		if err := pm.loadList(); err != nil {
			return nil, err
		}
	}
	return pm.list, nil
}

// Apply loads the named preset into s.
func (pm *PresetManager) Apply(name string, s *Synth) error {
	path, err := pm.path(name)
	if err != nil {
		return err
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.ApplyPresetJSON(bytes)
}

// Save writes the state of s as the named preset and lists it.
func (pm *PresetManager) Save(name string, s *Synth) error {
	path, err := pm.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, s.PresetJSON(), 0o644); err != nil {
		return err
	}
	list, err := pm.List()
	if err != nil {
		return err
	}
	for _, n := range list {
		if n == name {
			return nil
		}
	}
	pm.list = append(pm.list, name)
	return pm.saveList()
}

func (pm *PresetManager) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name[0] == '_' || name[0] == '.' {
		return "", fmt.Errorf("invalid preset name %q", name)
	}
	return filepath.Join(pm.dir, name+".json"), nil
}

func (pm *PresetManager) loadList() error {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if errors.Is(err, fs.ErrNotExist) {
		pm.list = []string{}
		return nil
	}
	if err != nil {
		return err
	}
	metaListJSON := &presetMetaListJSON{}
	if err := json.Unmarshal(bytes, metaListJSON); err != nil {
		return fmt.Errorf("preset list: %w", err)
	}
	pm.list = make([]string, 0, len(metaListJSON.Items))
	for _, item := range metaListJSON.Items {
		pm.list = append(pm.list, item.Name)
	}
	return nil
}

func (pm *PresetManager) saveList() error {
	metaListJSON := &presetMetaListJSON{Items: make([]presetMetaJSON, len(pm.list))}
	for i, name := range pm.list {
		metaListJSON.Items[i] = presetMetaJSON{Name: name}
	}
	return os.WriteFile(filepath.Join(pm.dir, "_list.json"), toRawMessage(metaListJSON), 0o644)
}
