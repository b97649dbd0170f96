package voice

import (
	"testing"

	"github.com/kazuvin/teto/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SceneOverrideWins(t *testing.T) {
	override := script.VoiceConfig{Provider: "mock", VoiceID: "a"}
	s := &script.Script{Voice: script.VoiceConfig{Provider: "mock", VoiceID: "default"}}
	scene := &script.Scene{Voice: &override}

	got, err := Resolve(s, scene)
	require.NoError(t, err)
	assert.Equal(t, "a", got.VoiceID)
}

func TestResolve_ProfileFallsBackToScriptVoice(t *testing.T) {
	s := &script.Script{
		Voice: script.VoiceConfig{Provider: "mock", VoiceID: "default"},
		VoiceProfiles: map[string]script.VoiceConfig{
			"n": {Provider: "mock", VoiceID: "profile-n"},
		},
	}
	scene := &script.Scene{VoiceProfile: "n"}

	got, err := Resolve(s, scene)
	require.NoError(t, err)
	assert.Equal(t, "profile-n", got.VoiceID)

	plain := &script.Scene{}
	got, err = Resolve(s, plain)
	require.NoError(t, err)
	assert.Equal(t, "default", got.VoiceID)
}

func TestResolve_UnknownProfileErrors(t *testing.T) {
	s := &script.Script{}
	scene := &script.Scene{VoiceProfile: "missing"}
	_, err := Resolve(s, scene)
	require.Error(t, err)
}

func TestForCache_ProfileNameNotIncluded(t *testing.T) {
	a := ForCache(script.VoiceConfig{Provider: "mock", VoiceID: "x", Speed: 1.0})
	b := ForCache(script.VoiceConfig{Provider: "mock", VoiceID: "x", Speed: 1.0})
	assert.Equal(t, a, b)
}

func TestEffectiveSpeed_DefaultsToOne(t *testing.T) {
	assert.Equal(t, 1.0, EffectiveSpeed(script.VoiceConfig{}))
	assert.Equal(t, 1.5, EffectiveSpeed(script.VoiceConfig{Speed: 1.5}))
}
