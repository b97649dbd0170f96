package compiler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
)

// videoExts is consulted to dispatch a resolved visual between a
// VideoLayer and an ImageLayer (spec §4.1 phase 4). The compiler has no
// mediabackend handle to probe a container's streams with, so the
// dispatch is extension-based, the same shallow heuristic
// internal/ttsprovider uses to guess an audio_ext ahead of synthesis.
var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true, ".m4v": true,
}

func isVideoPath(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// buildLayers is phase 4: resolve every scene's visual, emit one video
// (or image) layer per scene, one audio layer per narration segment plus
// sound effect plus optional BGM, one subtitle layer spanning every
// segment, and one stamp layer per declared script.StampConfig.
func (c *Compiler) buildLayers(ctx context.Context, s *script.Script, sceneTimings []SceneTiming, narrations [][]narrationResult) (videoLayers, audioLayers, stampLayers []project.Layer, subtitleLayer project.SubtitleLayer, err error) {
	var items []project.SubtitleItem

	for i := range s.Scenes {
		scene := &s.Scenes[i]
		timing := sceneTimings[i]
		loc := tetoerrors.Location{Scene: i, Valid: true}

		path, rerr := c.Resolver.Resolve(ctx, scene.Visual)
		if rerr != nil {
			if te, ok := rerr.(*tetoerrors.TetoError); ok {
				return nil, nil, nil, project.SubtitleLayer{}, te.WithLocation(loc)
			}
			return nil, nil, nil, project.SubtitleLayer{}, rerr
		}

		effectName, transition := c.effectiveEffect(s, scene)

		kind := project.LayerKindImage
		if isVideoPath(path) {
			kind = project.LayerKindVideo
		}

		var effectList []project.AnimationEffect
		if effectName != "" {
			effectList = append(effectList, project.AnimationEffect{Type: effectName, Duration: timing.End - timing.Start})
		}

		videoLayers = append(videoLayers, project.Layer{
			Kind:       kind,
			Path:       path,
			StartTime:  timing.Start,
			EndTime:    timing.End,
			MuteVideo:  scene.MuteVideo,
			Effects:    effectList,
			Transition: transition,
		})

		for _, seg := range timing.Segments {
			audioLayers = append(audioLayers, project.Layer{
				Kind:      project.LayerKindAudio,
				Path:      seg.Path,
				StartTime: seg.Start,
				EndTime:   seg.End,
				Volume:    1.0,
			})
			items = append(items, project.SubtitleItem{
				Text:  seg.Text,
				Start: seg.Start - s.Timing.SubtitlePadding,
				End:   seg.End + s.Timing.SubtitlePadding,
			})
		}

		for _, sfx := range scene.SoundEffects {
			start := timing.Start + sfx.OffsetFromScene
			audioLayers = append(audioLayers, project.Layer{
				Kind:      project.LayerKindAudio,
				Path:      sfx.Path,
				StartTime: start,
				EndTime:   start,
				Volume:    sfx.Volume,
			})
		}
	}

	totalDuration := 0.0
	if len(sceneTimings) > 0 {
		totalDuration = sceneTimings[len(sceneTimings)-1].End
	}

	if s.BGM != nil {
		audioLayers = append(audioLayers, project.Layer{
			Kind:      project.LayerKindAudio,
			Path:      s.BGM.Path,
			StartTime: 0,
			EndTime:   totalDuration,
			Volume:    s.BGM.Volume,
			Loop:      true,
		})
	}

	for _, stamp := range s.Stamps {
		stampLayers = append(stampLayers, project.Layer{
			Kind:      project.LayerKindStamp,
			Path:      stamp.Path,
			StartTime: stamp.Start,
			EndTime:   stamp.End,
			Position:  stamp.Position,
			Scale:     stamp.Scale,
			Opacity:   stamp.Opacity,
		})
	}

	subtitleLayer = project.SubtitleLayer{
		Items:         items,
		BaseStyle:     s.SubtitleStyle,
		PartialStyles: s.SubtitleStyles,
	}

	return videoLayers, audioLayers, stampLayers, subtitleLayer, nil
}

// effectiveEffect resolves a scene's effect name and transition, per
// spec §4.1 phase 4: scene override first, falling back to the named
// preset's bundle, falling back to the script's default_effect. A
// preset's transition only applies when the scene declares no
// transition of its own.
func (c *Compiler) effectiveEffect(s *script.Script, scene *script.Scene) (string, *script.TransitionConfig) {
	var preset effects.Preset
	var hasPreset bool
	if scene.Preset != "" {
		preset, hasPreset = c.Presets.Get(scene.Preset)
	}

	effectName := scene.Effect
	if effectName == "" && hasPreset {
		effectName = preset.Effect
	}
	if effectName == "" {
		effectName = s.DefaultEffect
	}

	transition := scene.Transition
	if transition == nil && hasPreset {
		transition = preset.Transition
	}

	return effectName, transition
}
