package ttsprovider

import (
	"context"
	"fmt"

	"github.com/kazuvin/teto/internal/script"
)

// MockProvider synthesizes deterministic, content-addressable placeholder
// audio: the byte content is a deterministic function of its inputs, and
// duration is either a fixed override or the shared heuristic. The
// compiler tests synthesize through it.
type MockProvider struct {
	// DurationOverride, if non-nil, maps exact text to a fixed duration,
	// letting a test pin precise timings (e.g.
	// estimate_duration("Hello", v) = 1.0).
	DurationOverride map[string]float64
	Ext              string
}

// NewMock returns a MockProvider producing ".mp3" audio.
func NewMock() *MockProvider {
	return &MockProvider{Ext: "mp3"}
}

func (m *MockProvider) Synthesize(_ context.Context, text string, voice script.VoiceConfig) (Result, error) {
	ext := m.Ext
	if ext == "" {
		ext = "mp3"
	}
	content := fmt.Sprintf("mock-audio:%s:%s:%s", text, voice.VoiceID, voice.Provider)
	return Result{Bytes: []byte(content), DeclaredExt: ext}, nil
}

func (m *MockProvider) EstimateDuration(text string, voice script.VoiceConfig) float64 {
	if d, ok := m.DurationOverride[text]; ok {
		return d
	}
	return EstimateDurationHeuristic(text, EffectiveSpeedOrDefault(voice.Speed))
}

// EffectiveSpeedOrDefault defaults a zero-valued speed to 1.0, mirroring
// internal/voice.EffectiveSpeed on a bare speed value, so ttsprovider
// does not import the voice package.
func EffectiveSpeedOrDefault(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	return speed
}

var _ Provider = (*MockProvider)(nil)
