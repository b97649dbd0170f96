package layers

import (
	"testing"

	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFFmpegArgs_ConcatsMultipleVideoLayers(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{
			Width: 1920, Height: 1080, FPS: 30, Codec: "libx264", Preset: "medium",
			SubtitleMode: "none", ObjectFit: "contain", Path: "/tmp/out.mp4",
		},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{
				{Kind: project.LayerKindImage, Path: "a.png", StartTime: 0, EndTime: 2},
				{Kind: project.LayerKindVideo, Path: "b.mp4", StartTime: 2, EndTime: 5},
			},
		},
	}

	args, err := BuildFFmpegArgs(proj, "", effects.NewRegistry())
	require.NoError(t, err)
	joined := joinArgs(args)
	assert.Contains(t, joined, "concat=n=2:v=1:a=0")
	assert.Contains(t, joined, "-map")
	assert.Contains(t, args, "/tmp/out.mp4")
}

func TestBuildFFmpegArgs_SingleVideoLayerSkipsConcat(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{Width: 100, Height: 100, FPS: 24, Codec: "libx264", Preset: "fast", Path: "/tmp/o.mp4"},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{{Kind: project.LayerKindVideo, Path: "a.mp4", StartTime: 0, EndTime: 3}},
		},
	}
	args, err := BuildFFmpegArgs(proj, "", effects.NewRegistry())
	require.NoError(t, err)
	assert.NotContains(t, joinArgs(args), "concat=")
}

func TestBuildFFmpegArgs_MixesMultipleAudioLayers(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{Width: 100, Height: 100, FPS: 24, Codec: "libx264", Preset: "fast", Path: "/tmp/o.mp4"},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{{Kind: project.LayerKindVideo, Path: "a.mp4", StartTime: 0, EndTime: 3}},
			AudioLayers: []project.Layer{
				{Path: "bgm.mp3", StartTime: 0, EndTime: 3, Volume: 0.5},
				{Path: "voice.mp3", StartTime: 0, EndTime: 2, Volume: 1},
			},
		},
	}
	args, err := BuildFFmpegArgs(proj, "", effects.NewRegistry())
	require.NoError(t, err)
	joined := joinArgs(args)
	assert.Contains(t, joined, "amix=inputs=2")
	assert.Contains(t, joined, "[final_audio]")
}

func TestBuildFFmpegArgs_LoopsShortBGMToCoverProjectDuration(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{Width: 100, Height: 100, FPS: 24, Codec: "libx264", Preset: "fast", Path: "/tmp/o.mp4"},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{{Kind: project.LayerKindVideo, Path: "a.mp4", StartTime: 0, EndTime: 10}},
			AudioLayers: []project.Layer{
				{Path: "bgm.mp3", StartTime: 0, EndTime: 10, Volume: 0.5, Loop: true},
			},
		},
	}
	args, err := BuildFFmpegArgs(proj, "", effects.NewRegistry())
	require.NoError(t, err)
	joined := joinArgs(args)
	assert.Contains(t, joined, "-stream_loop -1")
	assert.Contains(t, joined, "atrim=duration=10.000")
}

func TestBuildFFmpegArgs_BurnsSubtitleWhenModeIsBurn(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{Width: 100, Height: 100, FPS: 24, Codec: "libx264", Preset: "fast", SubtitleMode: "burn", Path: "/tmp/o.mp4"},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{{Kind: project.LayerKindVideo, Path: "a.mp4", StartTime: 0, EndTime: 3}},
		},
	}
	args, err := BuildFFmpegArgs(proj, "/tmp/subs.ass", effects.NewRegistry())
	require.NoError(t, err)
	assert.Contains(t, joinArgs(args), "ass=/tmp/subs.ass")
}

func TestBuildFFmpegArgs_OverlaysStampWithinWindow(t *testing.T) {
	proj := &project.Project{
		Output: project.OutputConfig{Width: 100, Height: 100, FPS: 24, Codec: "libx264", Preset: "fast", Path: "/tmp/o.mp4"},
		Timeline: project.Timeline{
			VideoLayers: []project.Layer{{Kind: project.LayerKindVideo, Path: "a.mp4", StartTime: 0, EndTime: 5}},
			StampLayers: []project.Layer{{Path: "logo.png", StartTime: 1, EndTime: 4, Scale: 0.2, Opacity: 1, Position: "top-right"}},
		},
	}
	args, err := BuildFFmpegArgs(proj, "", effects.NewRegistry())
	require.NoError(t, err)
	joined := joinArgs(args)
	assert.Contains(t, joined, "overlay=x=main_w-overlay_w-10")
	assert.Contains(t, joined, "between(t\\,1.000\\,4.000)")
}

func TestEffectFilters_UnknownEffectIsSkipped(t *testing.T) {
	filters := effectFilters(effects.NewRegistry(), []project.AnimationEffect{{Type: "not-a-real-effect"}}, effects.FrameSize{Width: 100, Height: 100}, 1)
	assert.Empty(t, filters)
}

func TestEffectFilters_AppliesKnownEffectInOrder(t *testing.T) {
	filters := effectFilters(effects.NewRegistry(), []project.AnimationEffect{
		{Type: "fadeIn", Duration: 0.5},
		{Type: "blur"},
	}, effects.FrameSize{Width: 100, Height: 100}, 2)
	require.Len(t, filters, 2)
	assert.Contains(t, filters[0], "fade=t=in")
	assert.Contains(t, filters[1], "gblur")
}

func TestObjectFitFilter_Variants(t *testing.T) {
	frame := effects.FrameSize{Width: 1920, Height: 1080}
	assert.Contains(t, objectFitFilter(project.LayerKindImage, "cover", frame), "crop=1920:1080")
	assert.Contains(t, objectFitFilter(project.LayerKindImage, "fill", frame), "scale=1920:1080")
	assert.Contains(t, objectFitFilter(project.LayerKindImage, "contain", frame), "pad=1920:1080")
}

func joinArgs(args []string) string {
	out := ""
	for _, a := range args {
		out += a + " "
	}
	return out
}
