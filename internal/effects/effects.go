// Package effects implements the EffectRegistry: a process-wide-but-
// frozen-after-construction mapping of named, time-parameterized clip
// transforms, selected at render time by a layer's effect stack.
package effects

// FrameSize is the target output resolution a clip is being composed
// into. It duplicates mediabackend.FrameSize's shape rather than
// importing that package, so that effects (a pure strategy registry)
// never depends on the backend that executes its output — the layers
// package, which depends on both, is what bridges the two.
type FrameSize struct {
	Width  int
	Height int
}

// Params is an effect's parameter bag, decoded from a script's
// AnimationEffect.Params map.
type Params map[string]interface{}

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Clip is the value an EffectStrategy transforms: an ordered list of
// ffmpeg filter fragments accumulated so far for one layer's video
// stream. Strategies never mutate their input; WithFilter returns a new
// Clip value with one more fragment appended.
type Clip struct {
	Filters []string
}

// WithFilter returns a copy of c with filter appended.
func (c Clip) WithFilter(filter string) Clip {
	next := make([]string, len(c.Filters), len(c.Filters)+1)
	copy(next, c.Filters)
	next = append(next, filter)
	return Clip{Filters: next}
}

// Strategy is a pure function (clip, params, frame size, clip duration)
// -> clip. Implementations may compute per-frame values via the easing
// helpers but must not mutate the input Clip.
type Strategy func(clip Clip, params Params, frame FrameSize, duration float64) Clip

// Registry is a named mapping of effect strategies. It is constructed
// with built-ins installed and is not mutated afterward; WithEffect
// returns a new Registry rather than mutating the receiver, so tests can
// substitute effects without any hidden module-level state (spec §9).
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns a Registry with every built-in strategy installed.
func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	for name, strategy := range builtins() {
		r.strategies[name] = strategy
	}
	return r
}

// WithEffect returns a new Registry identical to r except that name now
// maps to strategy. Registering an existing name replaces it silently —
// last-registered wins (spec §4.7), but only in the returned copy.
func (r *Registry) WithEffect(name string, strategy Strategy) *Registry {
	next := &Registry{strategies: make(map[string]Strategy, len(r.strategies)+1)}
	for k, v := range r.strategies {
		next.strategies[k] = v
	}
	next.strategies[name] = strategy
	return next
}

// Get returns the strategy registered under name, if any.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// Names returns every registered effect name, used to populate
// script.ValidationContext.KnownEffects.
func (r *Registry) Names() map[string]bool {
	names := make(map[string]bool, len(r.strategies))
	for k := range r.strategies {
		names[k] = true
	}
	return names
}
