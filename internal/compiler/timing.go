package compiler

import "github.com/kazuvin/teto/internal/script"

// SegmentTiming is one narration segment's absolute [Start, End) window,
// starting TimingConfig.SubtitlePadding after the preceding clock value,
// paired with the audio file it plays and its raw (markup-retaining) text.
type SegmentTiming struct {
	Start float64
	End   float64
	Path  string
	Text  string
}

// SceneTiming is one scene's absolute [Start, End) window and the
// timing of every narration segment within it.
type SceneTiming struct {
	Start    float64
	End      float64
	Segments []SegmentTiming
}

// computeTimings is phase 3: walk every scene in order, accumulating an
// absolute clock t, per spec §4.1's timing algorithm. A scene with
// narrations advances t by each segment's padded TTS duration plus the
// configured gaps; a scene without narrations advances t by its
// explicit duration. Every scene advances t by pause_after plus
// default_scene_gap once it ends.
func computeTimings(s *script.Script, narrations [][]narrationResult) []SceneTiming {
	timings := make([]SceneTiming, len(s.Scenes))
	t := 0.0

	for i := range s.Scenes {
		scene := &s.Scenes[i]
		sceneStart := t

		var segments []SegmentTiming
		if len(scene.Narrations) > 0 {
			for j, seg := range scene.Narrations {
				n := narrations[i][j]

				segStart := t + s.Timing.SubtitlePadding
				segEnd := segStart + n.Duration
				segments = append(segments, SegmentTiming{
					Start: segStart,
					End:   segEnd,
					Path:  n.Path,
					Text:  n.RawText,
				})

				t = segEnd + s.Timing.SubtitlePadding
				if j < len(scene.Narrations)-1 {
					t += s.Timing.DefaultSegmentGap
				}
				t += seg.PauseAfter
			}
		} else {
			duration := 0.0
			if scene.Duration != nil {
				duration = *scene.Duration
			}
			t = sceneStart + duration
		}

		sceneEnd := t
		t += scene.PauseAfter + s.Timing.DefaultSceneGap

		timings[i] = SceneTiming{Start: sceneStart, End: sceneEnd, Segments: segments}
	}

	return timings
}
