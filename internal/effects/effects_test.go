package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_HasAllBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{
		"fadeIn", "fadeOut", "slideIn", "slideOut", "zoom", "kenBurns",
		"blur", "colorGrade", "vignette", "glitch", "parallax", "bounce", "rotate",
	} {
		_, ok := r.Get(name)
		assert.True(t, ok, "missing built-in %q", name)
	}
}

func TestWithEffect_ReplacesWithoutMutatingOriginal(t *testing.T) {
	r := NewRegistry()
	custom := func(clip Clip, _ Params, _ FrameSize, _ float64) Clip {
		return clip.WithFilter("custom")
	}
	r2 := r.WithEffect("fadeIn", custom)

	orig, ok := r.Get("fadeIn")
	require.True(t, ok)
	replaced, ok := r2.Get("fadeIn")
	require.True(t, ok)

	c := Clip{}
	origResult := orig(c, Params{}, FrameSize{}, 1)
	replacedResult := replaced(c, Params{}, FrameSize{}, 1)
	assert.NotEqual(t, origResult.Filters, replacedResult.Filters)
}

func TestWithEffect_LastRegisteredWins(t *testing.T) {
	r := NewRegistry()
	first := func(clip Clip, _ Params, _ FrameSize, _ float64) Clip { return clip.WithFilter("first") }
	second := func(clip Clip, _ Params, _ FrameSize, _ float64) Clip { return clip.WithFilter("second") }

	r2 := r.WithEffect("custom", first).WithEffect("custom", second)
	strategy, ok := r2.Get("custom")
	require.True(t, ok)
	result := strategy(Clip{}, Params{}, FrameSize{}, 1)
	assert.Equal(t, []string{"second"}, result.Filters)
}

func TestClip_WithFilterDoesNotMutateOriginal(t *testing.T) {
	c := Clip{Filters: []string{"a"}}
	c2 := c.WithFilter("b")
	assert.Equal(t, []string{"a"}, c.Filters)
	assert.Equal(t, []string{"a", "b"}, c2.Filters)
}

func TestEasing_Bounds(t *testing.T) {
	for _, fn := range []EasingFunc{Linear, EaseIn, EaseOut, EaseInOut} {
		assert.InDelta(t, 0, fn(0), 1e-6)
		assert.InDelta(t, 1, fn(1), 1e-6)
	}
}

func TestEasing_EaseInOutMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 10; i++ {
		t_ := float64(i) / 10
		v := EaseInOut(t_)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestResolve_UnknownFallsBackToLinear(t *testing.T) {
	fn := Resolve("not-a-real-easing", nil)
	assert.Equal(t, 0.5, fn(0.5))
}

func TestRegistry_NamesIncludesAllBuiltins(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	assert.True(t, names["fadeIn"])
	assert.True(t, names["kenBurns"])
}
