package ttsprovider

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

const (
	maxAttempts      = 3
	initialRetryWait = 500 * time.Millisecond
	maxRetryWait     = 8 * time.Second
)

// RetryingProvider wraps a Provider with the bounded exponential backoff
// spec §7 requires: 3 attempts, initial 500ms, cap 8s, jittered, retrying
// only TtsNetwork/TtsServer errors.
type RetryingProvider struct {
	inner Provider
	log   logger.Logger
}

// NewRetrying wraps inner with retry behavior. log may be nil.
func NewRetrying(inner Provider, log logger.Logger) *RetryingProvider {
	if log == nil {
		log = logger.NewNoop()
	}
	return &RetryingProvider{inner: inner, log: log}
}

func (r *RetryingProvider) Synthesize(ctx context.Context, text string, voice script.VoiceConfig) (Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := retryDelay(attempt - 1)
			r.log.WithField("attempt", attempt).WithField("wait", wait.String()).Warn("retrying TTS synthesis")
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		res, err := r.inner.Synthesize(ctx, text, voice)
		if err == nil {
			return res, nil
		}
		lastErr = err

		te, ok := err.(*tetoerrors.TetoError)
		if !ok || !te.Retryable() {
			return Result{}, err
		}
	}
	return Result{}, lastErr
}

func (r *RetryingProvider) EstimateDuration(text string, voice script.VoiceConfig) float64 {
	return r.inner.EstimateDuration(text, voice)
}

// retryDelay computes exponential backoff with jitter: base * 2^(attempt-1),
// capped, plus 0-25% jitter to avoid a thundering herd of retries.
func retryDelay(attempt int) time.Duration {
	delay := float64(initialRetryWait) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryWait) {
		delay = float64(maxRetryWait)
	}
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}
