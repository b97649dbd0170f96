package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazuvin/teto/internal/assets"
	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/script"
	"github.com/kazuvin/teto/internal/ttscache"
	"github.com/kazuvin/teto/internal/ttsprovider"
)

type fakeResolver struct {
	path string
	err  error
}

func (r *fakeResolver) Resolve(_ context.Context, _ script.Visual) (string, error) {
	return r.path, r.err
}

var _ assets.Resolver = (*fakeResolver)(nil)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	cache, err := ttscache.New(t.TempDir(), nil)
	require.NoError(t, err)
	return New(cache, ttsprovider.NewMock(), &fakeResolver{path: "scene.png"}, effects.NewRegistry(), effects.NewPresetRegistry(), nil)
}

func simpleScript() *script.Script {
	return &script.Script{
		Scenes: []script.Scene{
			{
				Narrations: []script.NarrationSegment{{Text: "Hello there"}},
				Visual:     script.Visual{Path: "scene.png"},
			},
		},
		Voice:  script.VoiceConfig{Provider: "mock"},
		Output: script.OutputList{{}},
	}
}

func TestCompile_ProducesProjectWithVideoAudioAndSubtitleLayers(t *testing.T) {
	c := newTestCompiler(t)
	outPath := filepath.Join(t.TempDir(), "out.mp4")

	result, err := c.Compile(context.Background(), simpleScript(), outPath)
	require.NoError(t, err)

	require.Len(t, result.Project.Timeline.VideoLayers, 1)
	assert.Equal(t, "scene.png", result.Project.Timeline.VideoLayers[0].Path)
	require.Len(t, result.Project.Timeline.AudioLayers, 1)
	require.Len(t, result.Project.Timeline.SubtitleLayers, 1)
	assert.Equal(t, 1, result.Metadata.CacheMisses)
	assert.Equal(t, 0, result.Metadata.CacheHits)
}

func TestCompile_SecondCallHitsCache(t *testing.T) {
	c := newTestCompiler(t)
	s := simpleScript()

	_, err := c.Compile(context.Background(), s, filepath.Join(t.TempDir(), "out1.mp4"))
	require.NoError(t, err)

	result, err := c.Compile(context.Background(), s, filepath.Join(t.TempDir(), "out2.mp4"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Metadata.CacheHits)
	assert.Equal(t, 0, result.Metadata.CacheMisses)
}

func TestCompileAll_SharesNarrationAcrossOutputs(t *testing.T) {
	c := newTestCompiler(t)
	s := simpleScript()
	s.Output = script.OutputList{{Name: "a"}, {Name: "b"}}

	outDir := t.TempDir()
	results, err := c.CompileAll(context.Background(), s, outDir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(outDir, "a.mp4"), results[0].Project.Output.Path)
	assert.Equal(t, filepath.Join(outDir, "b.mp4"), results[1].Project.Output.Path)
	// Both outputs share one narration pass, so total cache activity is
	// exactly one synthesis, recorded identically in both metadata copies.
	assert.Equal(t, 1, results[0].Metadata.CacheMisses)
	assert.Equal(t, 1, results[1].Metadata.CacheMisses)

	if _, err := os.Stat(filepath.Join(outDir, "narrations")); err != nil {
		t.Fatalf("expected shared narrations dir: %v", err)
	}
}

func TestCompile_UnknownVoiceProfileFailsValidation(t *testing.T) {
	c := newTestCompiler(t)
	s := simpleScript()
	s.Scenes[0].VoiceProfile = "narrator"

	_, err := c.Compile(context.Background(), s, filepath.Join(t.TempDir(), "out.mp4"))
	require.Error(t, err)
}

func TestCompile_ResolverErrorPropagates(t *testing.T) {
	cache, err := ttscache.New(t.TempDir(), nil)
	require.NoError(t, err)
	c := New(cache, ttsprovider.NewMock(), &fakeResolver{err: assetErr{}}, effects.NewRegistry(), effects.NewPresetRegistry(), nil)

	_, err = c.Compile(context.Background(), simpleScript(), filepath.Join(t.TempDir(), "out.mp4"))
	require.Error(t, err)
}

type assetErr struct{}

func (assetErr) Error() string { return "asset missing" }

func TestMetadata_CacheHitRate(t *testing.T) {
	m := Metadata{CacheHits: 3, CacheMisses: 1}
	assert.Equal(t, 0.75, m.CacheHitRate())

	assert.Equal(t, 0.0, Metadata{}.CacheHitRate())
}
