package effects

import "github.com/kazuvin/teto/internal/script"

// Preset bundles the effect/transition/subtitle-style overrides a scene
// can pull in by name instead of spelling each one out.
type Preset struct {
	Effect            string
	Transition        *script.TransitionConfig
	SubtitleOverride  *script.PartialStyle
}

// PresetRegistry is a named mapping of Presets, built empty and grown
// only via WithPreset — there are no built-in presets, since a preset
// bundle only makes sense in the context of a particular script.
type PresetRegistry struct {
	presets map[string]Preset
}

// NewPresetRegistry returns an empty PresetRegistry.
func NewPresetRegistry() *PresetRegistry {
	return &PresetRegistry{presets: map[string]Preset{}}
}

// WithPreset returns a new PresetRegistry identical to r except that name
// now maps to preset (last-registered wins, same as Registry.WithEffect).
func (r *PresetRegistry) WithPreset(name string, preset Preset) *PresetRegistry {
	next := &PresetRegistry{presets: make(map[string]Preset, len(r.presets)+1)}
	for k, v := range r.presets {
		next.presets[k] = v
	}
	next.presets[name] = preset
	return next
}

// Get returns the preset registered under name, if any.
func (r *PresetRegistry) Get(name string) (Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// Names returns every registered preset name.
func (r *PresetRegistry) Names() map[string]bool {
	names := make(map[string]bool, len(r.presets))
	for k := range r.presets {
		names[k] = true
	}
	return names
}
