// Package layers turns a compiled project.Timeline into the ffmpeg argv
// mediabackend.Backend.Mux executes: one input per unique source file, a
// filter_complex graph that applies each layer's object-fit and effect
// stack, concatenates the video track in declared order, mixes audio,
// overlays stamps, and optionally burns in subtitles.
//
// This is where the EffectRegistry (internal/effects) and the media
// backend (internal/mediabackend) meet — both are pure/infrastructure
// packages with no knowledge of each other, and layers is the one place
// that imports both to wire a layer's declared effects into an actual
// filter fragment.
package layers

import (
	"fmt"
	"strings"

	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/project"
)

// BuildFFmpegArgs constructs the full ffmpeg argv for proj: every input,
// the filter_complex graph, stream maps, and the output encode settings.
// assPath, if non-empty and proj.Output.SubtitleMode is "burn", is
// composited in as an ass subtitle overlay.
func BuildFFmpegArgs(proj *project.Project, assPath string, registry *effects.Registry) ([]string, error) {
	args := []string{"-y"}

	inputIndexByKey := map[string]int{}
	nextInput := 0
	addInput := func(path string, isStillImage bool, duration float64, extra ...string) int {
		key := fmt.Sprintf("%s|%v", path, isStillImage)
		if idx, ok := inputIndexByKey[key]; ok {
			return idx
		}
		if isStillImage {
			args = append(args, "-loop", "1", "-t", fmt.Sprintf("%.3f", duration))
		}
		args = append(args, extra...)
		args = append(args, "-i", path)
		inputIndexByKey[key] = nextInput
		nextInput++
		return inputIndexByKey[key]
	}

	frame := effects.FrameSize{Width: proj.Output.Width, Height: proj.Output.Height}

	var videoFilters []string
	var concatLabels []string

	for i, layer := range proj.Timeline.VideoLayers {
		duration := layer.EndTime - layer.StartTime
		isStill := layer.Kind == project.LayerKindImage
		idx := addInput(layer.Path, isStill, duration)

		chain := []string{objectFitFilter(layer.Kind, proj.Output.ObjectFit, frame)}
		if !isStill {
			chain = append([]string{fmt.Sprintf("trim=duration=%.3f,setpts=PTS-STARTPTS", duration)}, chain...)
		} else {
			chain = append([]string{"setpts=PTS-STARTPTS"}, chain...)
		}
		chain = append(chain, effectFilters(registry, layer.Effects, frame, duration)...)

		label := fmt.Sprintf("v%d", i)
		videoFilters = append(videoFilters, fmt.Sprintf("[%d:v]%s[%s]", idx, strings.Join(chain, ","), label))
		concatLabels = append(concatLabels, "["+label+"]")
	}

	lastVideoLabel := ""
	if len(concatLabels) == 1 {
		lastVideoLabel = strings.Trim(concatLabels[0], "[]")
	} else if len(concatLabels) > 1 {
		lastVideoLabel = "vconcat"
		videoFilters = append(videoFilters, fmt.Sprintf(
			"%sconcat=n=%d:v=1:a=0[%s]", strings.Join(concatLabels, ""), len(concatLabels), lastVideoLabel))
	}

	var audioLabels []string
	for i, layer := range proj.Timeline.AudioLayers {
		var extra []string
		if layer.Loop {
			extra = []string{"-stream_loop", "-1"}
		}
		idx := addInput(layer.Path, false, 0, extra...)
		label := fmt.Sprintf("a%d", i)
		duration := layer.EndTime - layer.StartTime
		trim := ""
		if duration > 0 {
			trim = fmt.Sprintf(",atrim=duration=%.3f", duration)
		}
		videoFilters = append(videoFilters, fmt.Sprintf(
			"[%d:a]adelay=%d|%d,volume=%.3f%s[%s]",
			idx, int(layer.StartTime*1000), int(layer.StartTime*1000), layer.Volume, trim, label))
		audioLabels = append(audioLabels, "["+label+"]")
	}
	if len(audioLabels) > 0 {
		videoFilters = append(videoFilters, fmt.Sprintf(
			"%samix=inputs=%d:duration=longest:normalize=0[final_audio]",
			strings.Join(audioLabels, ""), len(audioLabels)))
	}

	for i, stamp := range proj.Timeline.StampLayers {
		idx := addInput(stamp.Path, true, stamp.EndTime-stamp.StartTime)
		scaleLabel := fmt.Sprintf("stamp%d", i)
		scale := stamp.Scale
		if scale <= 0 {
			scale = 1
		}
		videoFilters = append(videoFilters, fmt.Sprintf(
			"[%d:v]scale=iw*%.3f:ih*%.3f,format=rgba,colorchannelmixer=aa=%.3f[%s]",
			idx, scale, scale, clampOpacity(stamp.Opacity), scaleLabel))

		if lastVideoLabel == "" {
			return nil, fmt.Errorf("cannot overlay stamp %d: no base video layer", i)
		}
		x, y := stampPosition(stamp.Position)
		outLabel := fmt.Sprintf("stamped%d", i)
		videoFilters = append(videoFilters, fmt.Sprintf(
			"[%s][%s]overlay=x=%s:y=%s:enable='between(t\\,%.3f\\,%.3f)'[%s]",
			lastVideoLabel, scaleLabel, x, y, stamp.StartTime, stamp.EndTime, outLabel))
		lastVideoLabel = outLabel
	}

	if assPath != "" && proj.Output.SubtitleMode == "burn" && lastVideoLabel != "" {
		label := "vsub"
		videoFilters = append(videoFilters, fmt.Sprintf(
			"[%s]ass=%s[%s]", lastVideoLabel, escapeFilterPath(assPath), label))
		lastVideoLabel = label
	}

	if len(videoFilters) > 0 {
		args = append(args, "-filter_complex", strings.Join(videoFilters, ";"))
	}
	if lastVideoLabel != "" {
		args = append(args, "-map", "["+lastVideoLabel+"]")
	}
	if len(audioLabels) > 0 {
		args = append(args, "-map", "[final_audio]")
	}

	args = append(args,
		"-c:v", proj.Output.Codec,
		"-preset", proj.Output.Preset,
		"-r", fmt.Sprintf("%d", proj.Output.FPS),
		"-s", fmt.Sprintf("%dx%d", proj.Output.Width, proj.Output.Height),
		"-c:a", "aac",
		"-t", fmt.Sprintf("%.3f", proj.Timeline.Duration()),
		proj.Output.Path,
	)

	return args, nil
}

// objectFitFilter returns the scale(+pad/crop) filter fragment implementing
// contain/cover/fill against frame, per spec §4.5.1/§4.5.2. Audio-only and
// stamp layers never reach here.
func objectFitFilter(kind project.LayerKind, objectFit string, frame effects.FrameSize) string {
	w, h := frame.Width, frame.Height
	switch objectFit {
	case "cover":
		return fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", w, h, w, h)
	case "fill":
		return fmt.Sprintf("scale=%d:%d", w, h)
	default: // contain
		return fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", w, h, w, h)
	}
}

// effectFilters resolves each of a layer's declared effects against
// registry in order, threading an effects.Clip through each strategy, and
// returns the accumulated ffmpeg filter fragments ready to append to the
// layer's object-fit chain.
func effectFilters(registry *effects.Registry, declared []project.AnimationEffect, frame effects.FrameSize, duration float64) []string {
	clip := effects.Clip{}
	for _, ae := range declared {
		strategy, ok := registry.Get(ae.Type)
		if !ok {
			continue
		}
		d := ae.Duration
		if d <= 0 {
			d = duration
		}
		clip = strategy(clip, effects.Params(ae.Params), frame, d)
	}
	return clip.Filters
}

// stampPosition maps a named position preset to ffmpeg overlay x/y
// expressions, mirroring the alignment presets internal/subtitle uses for
// ASS alignment but in overlay-expression form.
func stampPosition(position string) (x, y string) {
	switch position {
	case "top-left":
		return "10", "10"
	case "top-right":
		return "main_w-overlay_w-10", "10"
	case "top-center":
		return "(main_w-overlay_w)/2", "10"
	case "bottom-left":
		return "10", "main_h-overlay_h-10"
	case "bottom-right":
		return "main_w-overlay_w-10", "main_h-overlay_h-10"
	case "center":
		return "(main_w-overlay_w)/2", "(main_h-overlay_h)/2"
	default: // bottom-center
		return "(main_w-overlay_w)/2", "main_h-overlay_h-10"
	}
}

func clampOpacity(o float64) float64 {
	if o <= 0 {
		return 1
	}
	if o > 1 {
		return 1
	}
	return o
}

func escapeFilterPath(p string) string {
	return strings.ReplaceAll(p, ":", "\\:")
}
