package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Decode([]byte(`{"title":"x","scenes":[],"bogus_field":1}`))
	require.Error(t, err)
}

func TestDecode_OutputSingleAndArray(t *testing.T) {
	single, err := Decode([]byte(`{"title":"t","scenes":[],"output":{"aspect_ratio":"16:9"}}`))
	require.NoError(t, err)
	require.Len(t, single.Output, 1)

	multi, err := Decode([]byte(`{"title":"t","scenes":[],"output":[{"aspect_ratio":"16:9"},{"aspect_ratio":"9:16"}]}`))
	require.NoError(t, err)
	require.Len(t, multi.Output, 2)
	assert.Equal(t, "9:16", multi.Output[1].AspectRatio)
}

func TestOutputSettings_WithDefaults(t *testing.T) {
	o := OutputSettings{}.WithDefaults()
	assert.Equal(t, AspectRatio16x9, o.AspectRatio)
	assert.Equal(t, 1920, o.Width)
	assert.Equal(t, 1080, o.Height)
	assert.Equal(t, 30, o.FPS)
	assert.Equal(t, "libx264", o.Codec)
	assert.Equal(t, SubtitleModeBurn, o.SubtitleMode)
	assert.Equal(t, ObjectFitContain, o.ObjectFit)

	portrait := OutputSettings{AspectRatio: AspectRatio9x16}.WithDefaults()
	assert.Equal(t, 1080, portrait.Width)
	assert.Equal(t, 1920, portrait.Height)
}

func TestResolutionForAspect_FixesHeightAt1080ForLandscape(t *testing.T) {
	w, h := ResolutionForAspect(AspectRatio21x9)
	assert.Equal(t, 2520, w)
	assert.Equal(t, 1080, h)

	w, h = ResolutionForAspect(AspectRatio4x3)
	assert.Equal(t, 1440, w)
	assert.Equal(t, 1080, h)
}

func TestReferencedTags(t *testing.T) {
	assert.Equal(t, []string{"em"}, ReferencedTags("a<em>b</em>c"))
	assert.Empty(t, ReferencedTags("plain text"))
}

func TestValidate_SceneWithoutNarrationOrDuration(t *testing.T) {
	s := &Script{
		Scenes: []Scene{{Visual: Visual{Path: "title.jpg"}}},
		Output: OutputList{{AspectRatio: "16:9"}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_SceneWithZeroDuration(t *testing.T) {
	zero := 0.0
	s := &Script{
		Scenes: []Scene{{Visual: Visual{Path: "title.jpg"}, Duration: &zero}},
		Output: OutputList{{AspectRatio: "16:9"}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_BothVoiceAndVoiceProfile(t *testing.T) {
	v := VoiceConfig{Provider: "mock"}
	s := &Script{
		VoiceProfiles: map[string]VoiceConfig{"n": v},
		Scenes: []Scene{{
			Visual:       Visual{Path: "a.png"},
			Narrations:   []NarrationSegment{{Text: "hi"}},
			Voice:        &v,
			VoiceProfile: "n",
		}},
		Output: OutputList{{AspectRatio: "16:9"}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_UnknownMarkupTag(t *testing.T) {
	s := &Script{
		Scenes: []Scene{{
			Visual:     Visual{Path: "a.png"},
			Narrations: []NarrationSegment{{Text: "a<em>b</em>c"}},
		}},
		Output: OutputList{{AspectRatio: "16:9"}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_StampMissingPath(t *testing.T) {
	s := &Script{
		Scenes: []Scene{{Visual: Visual{Path: "a.png"}, Duration: floatPtr(1)}},
		Output: OutputList{{AspectRatio: "16:9"}},
		Stamps: []StampConfig{{Start: 0, End: 1}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_StampEndBeforeStart(t *testing.T) {
	s := &Script{
		Scenes: []Scene{{Visual: Visual{Path: "a.png"}, Duration: floatPtr(1)}},
		Output: OutputList{{AspectRatio: "16:9"}},
		Stamps: []StampConfig{{Path: "logo.png", Start: 2, End: 1}},
	}
	err := s.Validate(ValidationContext{})
	require.Error(t, err)
}

func TestValidate_ValidStampPasses(t *testing.T) {
	s := &Script{
		Scenes: []Scene{{Visual: Visual{Path: "a.png"}, Duration: floatPtr(1)}},
		Output: OutputList{{AspectRatio: "16:9"}},
		Stamps: []StampConfig{{Path: "logo.png", Start: 0, End: 1}},
	}
	err := s.Validate(ValidationContext{})
	assert.NoError(t, err)
}

func floatPtr(f float64) *float64 { return &f }

func TestValidate_MissingOutputIsAllowedAndDefaultedLater(t *testing.T) {
	decoded, err := Decode([]byte(`{"title":"t","scenes":[{"visual":{"path":"a.png"},"duration":1}]}`))
	require.NoError(t, err)
	require.Nil(t, decoded.Output)

	err = decoded.Validate(ValidationContext{})
	assert.NoError(t, err)
}

func TestValidate_ValidScriptPasses(t *testing.T) {
	s := &Script{
		SubtitleStyles: map[string]PartialStyle{"em": {FontColor: "red"}},
		Scenes: []Scene{{
			Visual:     Visual{Path: "a.png"},
			Narrations: []NarrationSegment{{Text: "a<em>b</em>c"}},
		}},
		Output: OutputList{{AspectRatio: "16:9"}},
	}
	err := s.Validate(ValidationContext{})
	assert.NoError(t, err)
}
