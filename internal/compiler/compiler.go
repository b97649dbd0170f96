// Package compiler implements the ScriptCompiler: a six-phase Template
// Method that turns a validated Script into one Project (and Metadata)
// per declared output, synthesizing or retrieving narration audio along
// the way.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kazuvin/teto/internal/assets"
	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/internal/script"
	"github.com/kazuvin/teto/internal/ttscache"
	"github.com/kazuvin/teto/internal/ttsprovider"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

// Compiler wires together every external collaborator a compile needs:
// the TTS cache and provider, the asset resolver, and the effect/preset
// registries used to validate scene references (the preset registry also
// supplies a scene preset's effect and transition when building layers).
type Compiler struct {
	Cache    *ttscache.Cache
	Provider ttsprovider.Provider
	Resolver assets.Resolver
	Effects  *effects.Registry
	Presets  *effects.PresetRegistry
	Log      logger.Logger

	// NarrationConcurrency bounds how many (scene,segment) narrations are
	// generated in parallel; 0 or 1 means sequential. Result order is
	// always preserved regardless of completion order (spec §9).
	NarrationConcurrency int
}

// New constructs a Compiler. log may be nil.
func New(cache *ttscache.Cache, provider ttsprovider.Provider, resolver assets.Resolver, fx *effects.Registry, presets *effects.PresetRegistry, log logger.Logger) *Compiler {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Compiler{Cache: cache, Provider: provider, Resolver: resolver, Effects: fx, Presets: presets, Log: log}
}

// CompileResult is what one (Script, OutputSettings) pair compiles to.
type CompileResult struct {
	Project  *project.Project
	Metadata Metadata
}

// Metadata summarizes a single compile: total duration, per-scene
// timings, every generated/retrieved asset path, and cache statistics.
type Metadata struct {
	TotalDuration   float64
	SceneTimings    []SceneTiming
	GeneratedAssets []string
	CacheHits       int
	CacheMisses     int
}

func (m Metadata) CacheHitRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total)
}

// validationContext builds a script.ValidationContext from the
// compiler's effect/preset registries.
func (c *Compiler) validationContext() script.ValidationContext {
	return script.ValidationContext{KnownEffects: c.Effects.Names(), KnownPresets: c.Presets.Names()}
}

// shared is the output of the four phases every output in a script
// shares: narration generation, timing computation and layer building
// depend only on the Script, never on a particular OutputSettings.
type shared struct {
	narrations   [][]narrationResult // per scene, per segment
	sceneTimings []SceneTiming
	metadata     Metadata
	videoLayers  []project.Layer
	audioLayers  []project.Layer
	stampLayers  []project.Layer
	subtitle     project.SubtitleLayer
}

// compileShared runs phases 1-4 (Prepare, GenerateNarrations,
// ComputeTimings, BuildLayers), which are identical across every output
// a multi-output script declares.
func (c *Compiler) compileShared(ctx context.Context, s *script.Script, narrationDir string) (*shared, error) {
	if err := c.prepare(narrationDir); err != nil {
		return nil, err
	}

	narrations, hits, misses, err := c.generateNarrations(ctx, s, narrationDir)
	if err != nil {
		return nil, err
	}

	sceneTimings := computeTimings(s, narrations)

	videoLayers, audioLayers, stampLayers, subtitleLayer, err := c.buildLayers(ctx, s, sceneTimings, narrations)
	if err != nil {
		return nil, err
	}

	var generatedAssets []string
	for _, layer := range videoLayers {
		generatedAssets = append(generatedAssets, layer.Path)
	}
	for _, scene := range narrations {
		for _, n := range scene {
			generatedAssets = append(generatedAssets, n.Path)
		}
	}

	totalDuration := 0.0
	if len(videoLayers) > 0 {
		totalDuration = videoLayers[len(videoLayers)-1].EndTime
	}

	return &shared{
		narrations:   narrations,
		sceneTimings: sceneTimings,
		videoLayers:  videoLayers,
		audioLayers:  audioLayers,
		stampLayers:  stampLayers,
		subtitle:     subtitleLayer,
		metadata: Metadata{
			TotalDuration:   totalDuration,
			SceneTimings:    sceneTimings,
			GeneratedAssets: generatedAssets,
			CacheHits:       hits,
			CacheMisses:     misses,
		},
	}, nil
}

// prepare ensures the narration output directory exists (phase 1).
func (c *Compiler) prepare(narrationDir string) error {
	if err := os.MkdirAll(narrationDir, 0o755); err != nil {
		return tetoerrors.EncoderIo(err)
	}
	return nil
}

// Compile implements the single-output contract: compile(Script,
// output_path) -> CompileResult, using the script's first declared
// output (defaulted) with its path overridden to outputPath.
func (c *Compiler) Compile(ctx context.Context, s *script.Script, outputPath string) (*CompileResult, error) {
	if err := s.Validate(c.validationContext()); err != nil {
		return nil, err
	}

	outputs := s.Output
	if len(outputs) == 0 {
		outputs = script.OutputList{{}}
	}
	settings := outputs[0].WithDefaults()

	narrationDir := filepath.Join(filepath.Dir(outputPath), "narrations")
	sh, err := c.compileShared(ctx, s, narrationDir)
	if err != nil {
		return nil, err
	}

	proj := c.assemble(settings, outputPath, sh)
	return &CompileResult{Project: proj, Metadata: sh.metadata}, nil
}

// CompileAll implements compile_all(Script) -> ordered sequence of
// CompileResult, one per declared OutputSettings, sharing one narration
// generation and timing pass across every output.
func (c *Compiler) CompileAll(ctx context.Context, s *script.Script, outputDir string) ([]*CompileResult, error) {
	if err := s.Validate(c.validationContext()); err != nil {
		return nil, err
	}

	outputs := s.Output
	if len(outputs) == 0 {
		outputs = script.OutputList{{}}
	}

	narrationDir := filepath.Join(outputDir, "narrations")
	sh, err := c.compileShared(ctx, s, narrationDir)
	if err != nil {
		return nil, err
	}

	results := make([]*CompileResult, 0, len(outputs))
	for i, o := range outputs {
		settings := o.WithDefaults()
		name := settings.Name
		if name == "" {
			name = fmt.Sprintf("output_%d", i)
		}
		outputPath := filepath.Join(outputDir, name+".mp4")
		proj := c.assemble(settings, outputPath, sh)
		results = append(results, &CompileResult{Project: proj, Metadata: sh.metadata})
	}
	return results, nil
}

// assemble builds phase 5 (AssembleProject): an OutputConfig from
// settings and outputPath, paired with the shared Timeline.
func (c *Compiler) assemble(settings script.OutputSettings, outputPath string, sh *shared) *project.Project {
	return &project.Project{
		Output: project.OutputConfig{
			Name:         settings.Name,
			Path:         outputPath,
			Width:        settings.Width,
			Height:       settings.Height,
			FPS:          settings.FPS,
			Codec:        settings.Codec,
			Preset:       settings.Preset,
			SubtitleMode: settings.SubtitleMode,
			ObjectFit:    settings.ObjectFit,
		},
		Timeline: project.Timeline{
			VideoLayers:    sh.videoLayers,
			AudioLayers:    sh.audioLayers,
			SubtitleLayers: subtitleLayersOrNil(settings, sh.subtitle),
			StampLayers:    sh.stampLayers,
		},
	}
}

func subtitleLayersOrNil(settings script.OutputSettings, layer project.SubtitleLayer) []project.SubtitleLayer {
	if settings.SubtitleMode == script.SubtitleModeNone || len(layer.Items) == 0 {
		return nil
	}
	return []project.SubtitleLayer{layer}
}
