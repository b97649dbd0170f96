package ttsprovider

import (
	"context"
	"testing"

	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateDurationHeuristic_Latin(t *testing.T) {
	d := EstimateDurationHeuristic("fifteen characters", 1.0)
	assert.Greater(t, d, 0.0)
}

func TestEstimateDurationHeuristic_CJKSlowerThanLatinPerChar(t *testing.T) {
	latin := EstimateDurationHeuristic("aaaaaaaaaa", 1.0)
	cjk := EstimateDurationHeuristic("あああああああああ", 1.0)
	assert.Greater(t, cjk, latin)
}

func TestEstimateDurationHeuristic_SpeedScales(t *testing.T) {
	base := EstimateDurationHeuristic("hello world", 1.0)
	fast := EstimateDurationHeuristic("hello world", 2.0)
	assert.InDelta(t, base/2, fast, 1e-9)
}

func TestMockProvider_DurationOverride(t *testing.T) {
	m := NewMock()
	m.DurationOverride = map[string]float64{"Hello": 1.0}

	d := m.EstimateDuration("Hello", script.VoiceConfig{Provider: "mock", Speed: 1.0})
	assert.Equal(t, 1.0, d)
}

func TestMockProvider_SynthesizeDeterministic(t *testing.T) {
	m := NewMock()
	voice := script.VoiceConfig{Provider: "mock", VoiceID: "a"}
	r1, err := m.Synthesize(context.Background(), "hi", voice)
	require.NoError(t, err)
	r2, err := m.Synthesize(context.Background(), "hi", voice)
	require.NoError(t, err)
	assert.Equal(t, r1.Bytes, r2.Bytes)
}

type failThenSucceedProvider struct {
	calls int
	err   error
}

func (f *failThenSucceedProvider) Synthesize(_ context.Context, text string, _ script.VoiceConfig) (Result, error) {
	f.calls++
	if f.calls < 2 {
		return Result{}, f.err
	}
	return Result{Bytes: []byte(text), DeclaredExt: "mp3"}, nil
}

func (f *failThenSucceedProvider) EstimateDuration(text string, _ script.VoiceConfig) float64 {
	return float64(len(text))
}

func TestRetryingProvider_RetriesRetryableErrors(t *testing.T) {
	inner := &failThenSucceedProvider{err: tetoerrors.TtsNetwork(assertErr{})}
	r := NewRetrying(inner, logger.NewNoop())

	res, err := r.Synthesize(context.Background(), "hi", script.VoiceConfig{})
	require.NoError(t, err)
	assert.Equal(t, "hi", string(res.Bytes))
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingProvider_DoesNotRetryNonRetryable(t *testing.T) {
	inner := &failThenSucceedProvider{err: tetoerrors.TtsAuth(assertErr{})}
	r := NewRetrying(inner, logger.NewNoop())

	_, err := r.Synthesize(context.Background(), "hi", script.VoiceConfig{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
