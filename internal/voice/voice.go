// Package voice resolves the effective VoiceConfig for a scene and
// extracts the subset of fields that participate in the TTS cache key.
package voice

import (
	"fmt"

	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/internal/script"
)

// Resolve returns the effective VoiceConfig for a scene, per spec §4.1.1:
// scene.Voice, else script.VoiceProfiles[scene.VoiceProfile], else
// script.Voice. Profile names never enter the cache key — only the
// resolved value does.
func Resolve(s *script.Script, scene *script.Scene) (script.VoiceConfig, error) {
	if scene.Voice != nil {
		return *scene.Voice, nil
	}
	if scene.VoiceProfile != "" {
		v, ok := s.VoiceProfiles[scene.VoiceProfile]
		if !ok {
			return script.VoiceConfig{}, tetoerrors.Validation(
				fmt.Sprintf("unknown voice_profile %q", scene.VoiceProfile))
		}
		return v, nil
	}
	return s.Voice, nil
}

// CacheFields is the canonical projection of a VoiceConfig onto exactly
// the fields spec §4.2 says affect synthesized audio. It is the value
// hashed into the TTS cache key, alongside the plain text.
type CacheFields struct {
	Provider      string  `json:"provider"`
	VoiceID       string  `json:"voice_id"`
	LanguageCode  string  `json:"language_code"`
	Speed         float64 `json:"speed"`
	Pitch         float64 `json:"pitch"`
	ModelID       string  `json:"model_id"`
	OutputFormat  string  `json:"output_format"`
	VoiceName     string  `json:"voice_name"`
	GeminiModelID string  `json:"gemini_model_id"`
	StylePrompt   string  `json:"style_prompt"`
}

// ForCache projects v onto its cache-relevant fields.
func ForCache(v script.VoiceConfig) CacheFields {
	return CacheFields{
		Provider:      v.Provider,
		VoiceID:       v.VoiceID,
		LanguageCode:  v.LanguageCode,
		Speed:         v.Speed,
		Pitch:         v.Pitch,
		ModelID:       v.ModelID,
		OutputFormat:  v.OutputFormat,
		VoiceName:     v.VoiceName,
		GeminiModelID: v.GeminiModelID,
		StylePrompt:   v.StylePrompt,
	}
}

// EffectiveSpeed returns v.Speed, defaulting to 1.0 when unset (the JSON
// zero value), since spec §6.2 constrains speed to [0.5, 2.0] and 0 is
// never a valid configured value.
func EffectiveSpeed(v script.VoiceConfig) float64 {
	if v.Speed == 0 {
		return 1.0
	}
	return v.Speed
}
