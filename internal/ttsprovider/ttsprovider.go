// Package ttsprovider defines the TTSProvider interface teto's compiler
// synthesizes narration through, a duration-estimation heuristic shared by
// every implementation, and a retrying wrapper for transient provider
// failures.
package ttsprovider

import (
	"context"

	"github.com/kazuvin/teto/internal/script"
)

// Result is what a successful synthesis call returns.
type Result struct {
	Bytes         []byte
	DeclaredExt   string
}

// Provider synthesizes narration audio for a resolved VoiceConfig.
// Implementations must return a *tetoerrors.TetoError of kind TtsAuth,
// TtsQuota, TtsInvalid, TtsNetwork or TtsServer on failure (spec §4.3).
type Provider interface {
	// Synthesize converts text to speech using voice.
	Synthesize(ctx context.Context, text string, voice script.VoiceConfig) (Result, error)

	// EstimateDuration returns a cheap, deterministic estimate of the
	// spoken duration of text at voice's settings, in seconds. Used both
	// for cache hits (where no audio round-trip is needed) and as a
	// fallback when a provider's synthesis response omits exact length.
	EstimateDuration(text string, voice script.VoiceConfig) float64
}
