// Package preset loads named tuning presets for the instrument and turns
// them into console commands. A preset file carries only the tunables it
// wants to change; everything else keeps the firmware default.
package preset

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"tipetch/core"
)

// Preset is one named set of parameter overrides.
type Preset struct {
	Name   string             `yaml:"name"`
	Params map[string]float32 `yaml:"params"`
}

// File is the on-disk format: any number of presets.
type File struct {
	Presets []Preset `yaml:"presets"`
}

// Parse decodes and validates preset data. Unknown parameter names are
// rejected here rather than at send time.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	scratch := core.DefaultParams()
	for _, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		for name, v := range p.Params {
			if err := scratch.Set(name, v); err != nil {
				return nil, fmt.Errorf("preset %q: %w: %s", p.Name, err, name)
			}
		}
	}
	return &f, nil
}

// Load reads and parses a preset file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return Parse(data)
}

// Find returns the preset with the given name.
func (f *File) Find(name string) (Preset, bool) {
	for _, p := range f.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Names lists the presets in file order.
func (f *File) Names() []string {
	out := make([]string, len(f.Presets))
	for i, p := range f.Presets {
		out[i] = p.Name
	}
	return out
}

// Commands renders the preset as console "set" lines, sorted by parameter
// name so the output is stable.
func (p Preset) Commands() []string {
	names := make([]string, 0, len(p.Params))
	for name := range p.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = "set " + name + " " +
			strconv.FormatFloat(float64(p.Params[name]), 'f', -1, 32)
	}
	return out
}

// Apply writes the preset's overrides into params.
func (p Preset) Apply(params *core.Params) error {
	for name, v := range p.Params {
		if err := params.Set(name, v); err != nil {
			return fmt.Errorf("preset %q: %w: %s", p.Name, err, name)
		}
	}
	return nil
}
