// Package pipeline implements the Chain of Responsibility that turns a
// compiled project.Project into a muxed output file: each step either
// does its work and calls the next, or short-circuits the chain on
// error. The default chain matches spec §4.4's seven steps; callers may
// substitute or reorder steps via Build.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/layers"
	"github.com/kazuvin/teto/internal/mediabackend"
	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/internal/subtitle"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

// RenderContext carries everything a step needs: the project being
// rendered, the backend it renders through, the effect registry
// resolving each layer's declared effects, a progress sink, and the
// verbose flag controlling backend chatter. Steps that stage temporary
// files (in the default chain, only the subtitle burn-in's .ass file)
// record them in TempFiles so CleanupStep can remove them in reverse order.
type RenderContext struct {
	Ctx      context.Context
	Project  *project.Project
	Backend  mediabackend.Backend
	Registry *effects.Registry
	Progress chan<- float64
	Verbose  bool
	Log      logger.Logger

	ASSPath     string
	SidecarPath string
	TempFiles   []string
}

func (c *RenderContext) addTempFile(path string) {
	c.TempFiles = append(c.TempFiles, path)
}

// Step is one link in the chain: it may inspect or mutate ctx, then must
// call next(ctx) to continue, or return early (with or without error) to
// short-circuit the remaining steps.
type Step func(ctx *RenderContext, next Next) error

// Next invokes the remainder of the chain.
type Next func(ctx *RenderContext) error

// Build folds steps into a single Next, each calling into the next in
// order; the last step's next is a no-op.
func Build(steps ...Step) Next {
	var chain Next = func(*RenderContext) error { return nil }
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		rest := chain
		chain = func(ctx *RenderContext) error { return step(ctx, rest) }
	}
	return chain
}

// DefaultChain is the seven-step render pipeline of spec §4.4.
func DefaultChain() []Step {
	return []Step{
		VideoLayerProcessingStep,
		AudioLayerProcessingStep,
		AudioMergingStep,
		StampLayerProcessingStep,
		SubtitleProcessingStep,
		VideoOutputStep,
		CleanupStep,
	}
}

// Run executes the default chain against ctx.
func Run(ctx *RenderContext) error {
	return Build(DefaultChain()...)(ctx)
}

// VideoLayerProcessingStep resolves the output frame size (already fixed
// by the compiler) and probes every video/image layer's source so a
// missing or unreadable asset fails fast, before any encode work starts.
func VideoLayerProcessingStep(ctx *RenderContext, next Next) error {
	if ctx.Project.Output.Width == 0 || ctx.Project.Output.Height == 0 {
		return tetoerrors.InternalBug("output frame size was never resolved before rendering")
	}
	for _, layer := range ctx.Project.Timeline.VideoLayers {
		if _, err := ctx.Backend.LoadClip(ctx.Ctx, layer.Path, layer.Kind); err != nil {
			return err
		}
	}
	return next(ctx)
}

// AudioLayerProcessingStep probes every audio layer's source.
func AudioLayerProcessingStep(ctx *RenderContext, next Next) error {
	for _, layer := range ctx.Project.Timeline.AudioLayers {
		if _, err := ctx.Backend.LoadClip(ctx.Ctx, layer.Path, project.LayerKindAudio); err != nil {
			return err
		}
	}
	return next(ctx)
}

// AudioMergingStep is a deliberate no-op: mixing every audio layer into a
// single track is expressed as part of the filter_complex graph
// VideoOutputStep builds (one amix node), rather than as a materialized
// intermediate file the way a frame-decoding backend would need. The step
// stays in the chain so a custom pipeline can still insert work between
// audio probing and stamp compositing, and so the chain's shape matches
// spec §4.4 exactly.
func AudioMergingStep(ctx *RenderContext, next Next) error {
	return next(ctx)
}

// StampLayerProcessingStep probes every stamp layer's source image.
func StampLayerProcessingStep(ctx *RenderContext, next Next) error {
	for _, layer := range ctx.Project.Timeline.StampLayers {
		if _, err := ctx.Backend.LoadClip(ctx.Ctx, layer.Path, project.LayerKindStamp); err != nil {
			return err
		}
	}
	return next(ctx)
}

// SubtitleProcessingStep dispatches on subtitle_mode: burn stages a
// temporary .ass file for VideoOutputStep to composite in; srt/vtt writes
// a sidecar next to the output path and leaves the clip untouched; none
// is a no-op.
func SubtitleProcessingStep(ctx *RenderContext, next Next) error {
	layer, ok := soleSubtitleLayer(ctx.Project)
	switch ctx.Project.Output.SubtitleMode {
	case "burn":
		if ok {
			assPath := ctx.Project.Output.Path + ".ass"
			if err := os.WriteFile(assPath, []byte(subtitle.GenerateASS(layer)), 0o644); err != nil {
				return tetoerrors.EncoderIo(err)
			}
			ctx.ASSPath = assPath
			ctx.addTempFile(assPath)
		}
	case "srt":
		if ok {
			sidecarPath := sidecarPathFor(ctx.Project.Output.Path, "srt")
			if err := os.WriteFile(sidecarPath, []byte(subtitle.GenerateSRT(layer)), 0o644); err != nil {
				return tetoerrors.EncoderIo(err)
			}
			ctx.SidecarPath = sidecarPath
		}
	case "vtt":
		if ok {
			sidecarPath := sidecarPathFor(ctx.Project.Output.Path, "vtt")
			if err := os.WriteFile(sidecarPath, []byte(subtitle.GenerateVTT(layer)), 0o644); err != nil {
				return tetoerrors.EncoderIo(err)
			}
			ctx.SidecarPath = sidecarPath
		}
	case "none", "":
	}
	return next(ctx)
}

func soleSubtitleLayer(p *project.Project) (project.SubtitleLayer, bool) {
	if len(p.Timeline.SubtitleLayers) == 0 {
		return project.SubtitleLayer{}, false
	}
	return p.Timeline.SubtitleLayers[0], true
}

func sidecarPathFor(outputPath, ext string) string {
	base := outputPath[:len(outputPath)-len(filepath.Ext(outputPath))]
	return base + "." + ext
}

// VideoOutputStep builds the ffmpeg argv via the layers package and
// invokes the backend to encode it, creating the output directory first.
func VideoOutputStep(ctx *RenderContext, next Next) error {
	if err := os.MkdirAll(filepath.Dir(ctx.Project.Output.Path), 0o755); err != nil {
		return tetoerrors.EncoderIo(err)
	}

	args, err := layers.BuildFFmpegArgs(ctx.Project, ctx.ASSPath, ctx.Registry)
	if err != nil {
		return err
	}
	if ctx.Log != nil && !ctx.Verbose {
		ctx.Log.Debug("rendering (verbose backend output suppressed)")
	}

	if err := ctx.Backend.Mux(ctx.Ctx, args, ctx.Project.Timeline.Duration(), ctx.Progress); err != nil {
		return err
	}
	return next(ctx)
}

// CleanupStep removes temp files in reverse order of acquisition.
func CleanupStep(ctx *RenderContext, next Next) error {
	for i := len(ctx.TempFiles) - 1; i >= 0; i-- {
		_ = os.Remove(ctx.TempFiles[i])
	}
	return next(ctx)
}
