package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kazuvin/teto/internal/script"
	"github.com/kazuvin/teto/internal/subtitle"
	"github.com/kazuvin/teto/internal/voice"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
)

// narrationResult is what phase 2 produces for one (scene, segment): the
// written audio file's path, its spoken duration, and both the raw
// (markup-retaining) and plain (stripped) text.
type narrationResult struct {
	Path     string
	Duration float64
	RawText  string
	PlainText string
}

// generateNarrations is phase 2: for each (scene_i, segment_j), resolve
// the effective voice, strip markup, query the cache, and fall back to
// the provider on a miss, writing bytes to
// narrations/scene_{i:03}_seg_{j:03}.{ext}.
func (c *Compiler) generateNarrations(ctx context.Context, s *script.Script, narrationDir string) ([][]narrationResult, int, int, error) {
	results := make([][]narrationResult, len(s.Scenes))
	for i := range s.Scenes {
		results[i] = make([]narrationResult, len(s.Scenes[i].Narrations))
	}

	var hits, misses int64

	limit := c.NarrationConcurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex // guards concurrent writes into results

	for i := range s.Scenes {
		i := i
		scene := &s.Scenes[i]
		for j := range scene.Narrations {
			j := j
			seg := scene.Narrations[j]
			g.Go(func() error {
				res, hit, err := c.synthesizeOne(gctx, s, scene, seg, narrationDir, i, j)
				if err != nil {
					return err
				}
				mu.Lock()
				results[i][j] = res
				mu.Unlock()
				if hit {
					atomic.AddInt64(&hits, 1)
				} else {
					atomic.AddInt64(&misses, 1)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}

	return results, int(hits), int(misses), nil
}

// synthesizeOne resolves voice, queries the cache, falls back to the
// provider on a miss, and writes the resulting bytes to disk — the
// per-segment body of phase 2.
func (c *Compiler) synthesizeOne(ctx context.Context, s *script.Script, scene *script.Scene, seg script.NarrationSegment, narrationDir string, sceneIdx, segIdx int) (narrationResult, bool, error) {
	loc := tetoerrors.Location{Scene: sceneIdx, Segment: segIdx, Valid: true}

	v, err := voice.Resolve(s, scene)
	if err != nil {
		if te, ok := err.(*tetoerrors.TetoError); ok {
			return narrationResult{}, false, te.WithLocation(loc)
		}
		return narrationResult{}, false, err
	}

	plain := subtitle.StripMarkup(seg.Text)
	ext := guessExt(v)
	cacheFields := voice.ForCache(v)

	data, hit, err := c.Cache.Get(plain, cacheFields, ext)
	if err != nil {
		return narrationResult{}, false, err
	}

	var duration float64
	if hit {
		duration = c.Provider.EstimateDuration(plain, v)
	} else {
		result, err := c.Provider.Synthesize(ctx, plain, v)
		if err != nil {
			return narrationResult{}, false, err
		}
		data = result.Bytes
		if result.DeclaredExt != "" {
			ext = result.DeclaredExt
		}
		if err := c.Cache.Put(plain, cacheFields, ext, data); err != nil {
			return narrationResult{}, false, err
		}
		duration = c.Provider.EstimateDuration(plain, v)
	}

	path := filepath.Join(narrationDir, fmt.Sprintf("scene_%03d_seg_%03d.%s", sceneIdx, segIdx, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return narrationResult{}, false, tetoerrors.EncoderIo(err)
	}

	return narrationResult{Path: path, Duration: duration, RawText: seg.Text, PlainText: plain}, hit, nil
}

// guessExt picks the audio_ext a voice's provider is expected to return,
// before any synthesis call is made — used to compute the cache key's
// file extension ahead of time (spec §4.1 phase 2). The provider's
// actual DeclaredExt, once synthesis runs, overrides this guess.
func guessExt(v script.VoiceConfig) string {
	if v.OutputFormat != "" {
		return v.OutputFormat
	}
	return "mp3"
}
